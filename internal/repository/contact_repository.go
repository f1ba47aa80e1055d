package repository

import (
	"context"
	"strings"

	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// ContactRepository reads the contact directory used to populate
// approver-matrix dropdowns.
type ContactRepository struct {
	wh *warehouse.Client

	// allowedLastnames is a static data-quality allow-list: only contacts with
	// these lastnames are offered as approver candidates. Empty means no
	// filtering.
	allowedLastnames map[string]struct{}
}

// NewContactRepository creates a contact repository with an optional lastname
// allow-list.
func NewContactRepository(wh *warehouse.Client, allowedLastnames []string) *ContactRepository {
	allowed := make(map[string]struct{}, len(allowedLastnames))
	for _, name := range allowedLastnames {
		allowed[strings.ToLower(name)] = struct{}{}
	}
	return &ContactRepository{wh: wh, allowedLastnames: allowed}
}

// List returns the contact directory, filtered by the lastname allow-list.
func (r *ContactRepository) List(ctx context.Context) ([]*Contact, error) {
	query := `
		query ListContacts {
			listContacts {
				items { email firstName lastName jobTitle }
			}
		}
	`

	var resp struct {
		ListContacts struct {
			Items []*Contact `json:"items"`
		} `json:"listContacts"`
	}

	if err := r.wh.Run(ctx, query, nil, &resp); err != nil {
		return nil, err
	}

	if len(r.allowedLastnames) == 0 {
		return resp.ListContacts.Items, nil
	}

	contacts := make([]*Contact, 0, len(resp.ListContacts.Items))
	for _, c := range resp.ListContacts.Items {
		if _, ok := r.allowedLastnames[strings.ToLower(c.LastName)]; ok {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}
