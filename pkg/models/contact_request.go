package models

import "time"

type ContactStatus string

const (
	ContactPending  ContactStatus = "Pending"
	ContactApproved ContactStatus = "Approved"
	ContactRejected ContactStatus = "Rejected"
)

func (s ContactStatus) Valid() bool {
	return s == ContactPending || s == ContactApproved || s == ContactRejected
}

type ContactRequest struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	RequestedRole Role          `json:"requestedRole"`
	Message       string        `json:"message"`
	Status        ContactStatus `json:"status"`
	AdminNotes    string        `json:"adminNotes"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
