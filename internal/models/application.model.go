package models

import (
	"gorm.io/gorm"

	"apartmentqueue/internal/types"
)

type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "pending"
	ApprovalStateApproved ApprovalState = "approved"
	ApprovalStateRejected ApprovalState = "rejected"
)

// Application is one applicant's submission. HASO applications carry a
// right of occupancy id and a ranked list of apartment priorities, HITAS
// applications sit in per-apartment queues.
type Application struct {
	BaseUUIDModel
	Type                 OwnershipType `gorm:"type:varchar(10);not null;index"        json:"type"                         validate:"required,oneof=haso hitas"`
	ApplicantToken       string        `gorm:"type:varchar(255);not null;index"       json:"applicantToken"               validate:"required,max=255"`
	IsApproved           bool          `gorm:"type:bool;default:false;not null"       json:"isApproved"`
	IsRejected           bool          `gorm:"type:bool;default:false;not null"       json:"isRejected"`
	RejectionDescription string        `gorm:"type:text"                              json:"rejectionDescription,omitempty"`
	OfferAccepted        bool          `gorm:"type:bool;default:false;not null"       json:"offerAccepted"`

	RightOfOccupancyID *int `gorm:"type:int;index"                  json:"rightOfOccupancyId,omitempty"`
	HouseholdSize      int  `gorm:"type:int;default:1;not null"     json:"householdSize"`
	IsOver55           bool `gorm:"type:bool;default:false;not null" json:"isOver55"`
	HasHasoOwnership   bool `gorm:"type:bool;default:false;not null" json:"hasHasoOwnership"`

	HasChildren bool `gorm:"type:bool;default:false;not null" json:"hasChildren"`

	Priorities []ApartmentPriority `gorm:"foreignKey:ApplicationID" json:"priorities,omitempty"`
}

func (a *Application) State() ApprovalState {
	switch {
	case a.IsRejected:
		return ApprovalStateRejected
	case a.IsApproved:
		return ApprovalStateApproved
	default:
		return ApprovalStatePending
	}
}

// Validate checks the state rules that must hold before persisting.
func (a *Application) Validate() error {
	if !a.Type.IsValid() {
		return types.Validationf("unknown application type %q", a.Type)
	}
	if a.IsApproved && a.IsRejected {
		return types.Validationf("application cannot be both approved and rejected")
	}
	if a.OfferAccepted && !a.IsApproved {
		return types.Validationf("offer cannot be accepted before approval")
	}
	if a.Type == OwnershipTypeHaso && a.RightOfOccupancyID == nil {
		return types.Validationf("haso application requires a right of occupancy id")
	}
	return nil
}

// Approve moves a pending application to approved. Approving an already
// approved application is a no-op.
func (a *Application) Approve() (string, error) {
	if a.IsRejected {
		return "", types.Validationf("rejected application %s cannot be approved", a.ID)
	}
	a.IsApproved = true
	return "application approved", a.Validate()
}

// Reject clears any approval. Rejected is terminal.
func (a *Application) Reject(reason string) (string, error) {
	if a.IsRejected {
		return "", types.Validationf("application %s is already rejected", a.ID)
	}
	if a.OfferAccepted {
		return "", types.Validationf("application %s has an accepted offer", a.ID)
	}
	a.IsApproved = false
	a.IsRejected = true
	a.RejectionDescription = reason
	return "application rejected: " + reason, a.Validate()
}

func (a *Application) AcceptOffer() (string, error) {
	if !a.IsApproved || a.IsRejected {
		return "", types.Validationf("application %s must be approved to accept an offer", a.ID)
	}
	if a.OfferAccepted {
		return "", types.Validationf("application %s has already accepted an offer", a.ID)
	}
	a.OfferAccepted = true
	return "offer accepted", a.Validate()
}

func (a *Application) BeforeSave(tx *gorm.DB) (err error) {
	return a.Validate()
}
