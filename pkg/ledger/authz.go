package ledger

// Owned is implemented by every resource that can be access-checked: Account
// carries its owner directly, Transaction resolves it through its parent
// account. The gate never probes concrete types.
type Owned interface {
	OwnerID() uint
}

// AuthorizeWrite allows a mutation only when the resource resolves to the
// acting user. List and retrieve paths are already pre-filtered by owner at
// the query layer; this is the second check on direct object access.
func AuthorizeWrite(actorID uint, res Owned) error {
	if res.OwnerID() != actorID {
		return ErrForbidden
	}
	return nil
}
