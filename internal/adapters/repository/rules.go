package repository

import "fmt"

// AccessRule decides whether requesterID may delete doc.
type AccessRule func(doc Document, requesterID string) error

// OwnerRule allows deletes only when the document's field equals the
// requester. Documents without the field cannot be deleted by anyone.
func OwnerRule(field string) AccessRule {
	return func(doc Document, requesterID string) error {
		owner, _ := doc.Data[field].(string)
		if requesterID == "" || owner == "" || owner != requesterID {
			return fmt.Errorf("%w: %s/%s", ErrForbidden, field, doc.ID)
		}
		return nil
	}
}

// AllowAll permits every delete.
func AllowAll(Document, string) error { return nil }

// DefaultRules are the access rules for the standard collections: events are
// owner-deletable and user documents only by the user themself.
func DefaultRules() map[string]AccessRule {
	return map[string]AccessRule{
		CollectionEvents: OwnerRule("userId"),
		CollectionUsers: func(doc Document, requesterID string) error {
			if requesterID == "" || doc.ID != requesterID {
				return fmt.Errorf("%w: users/%s", ErrForbidden, doc.ID)
			}
			return nil
		},
	}
}
