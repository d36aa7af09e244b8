package contacts

import "time"

// Owner names the party a contact hangs off and the tables backing it.
type Owner struct {
	Name   string
	Table  string
	Column string
	Parent string
	Path   string
}

var (
	// ClientOwner stores contacts in client_contacts.
	ClientOwner = Owner{Name: "client", Table: "client_contacts", Column: "client_id", Parent: "clients", Path: "/clients"}
	// VendorOwner stores contacts in vendor_contacts.
	VendorOwner = Owner{Name: "vendor", Table: "vendor_contacts", Column: "vendor_id", Parent: "vendors", Path: "/vendors"}
)

// Contact is a person reachable at a client or vendor.
type Contact struct {
	ID        int64     `json:"id"`
	PartyID   int64     `json:"party_id"`
	PartyName string    `json:"party_name"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request creates or replaces a contact. PartyID on update moves the contact
// to another party of the same kind.
type Request struct {
	Name    string `json:"name" validate:"required,max=191"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Email   string `json:"email" validate:"required,max=191"`
	PartyID *int64 `json:"party_id,omitempty" validate:"omitempty,gt=0"`
}
