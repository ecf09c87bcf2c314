package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HistoryEntityType string

const (
	HistoryEntityApplication HistoryEntityType = "application"
	HistoryEntityPriority    HistoryEntityType = "apartment_priority"
	HistoryEntityApartment   HistoryEntityType = "apartment"
	HistoryEntityHitasEntry  HistoryEntityType = "hitas_queue_entry"
	HistoryEntityReservation HistoryEntityType = "reservation"
)

type HistoryAction string

const (
	HistoryActionCreated     HistoryAction = "created"
	HistoryActionApproved    HistoryAction = "approved"
	HistoryActionRejected    HistoryAction = "rejected"
	HistoryActionOffer       HistoryAction = "offer_accepted"
	HistoryActionDeactivated HistoryAction = "deactivated"
	HistoryActionUnavailable HistoryAction = "unavailable"
	HistoryActionReordered   HistoryAction = "reordered"
	HistoryActionTerminated  HistoryAction = "terminated"
)

// Reasons recorded with priority deactivations.
const (
	ReasonSupersededByFirstPlace = "superseded by another first-place win"
	ReasonOfferAccepted          = "deactivated due to accepted offer"
	ReasonApplicationRejected    = "deactivated due to rejected application"
)

// HistoryEvent is an append-only change log entry. Events written by one
// bulk operation share a BatchID.
type HistoryEvent struct {
	BaseUUIDModel
	EntityType HistoryEntityType `gorm:"type:varchar(50);not null;index:idx_history_entity,priority:1" json:"entityType"`
	EntityID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_history_entity,priority:2"        json:"entityId"`
	Action     HistoryAction     `gorm:"type:varchar(50);not null"                                     json:"action"`
	Reason     string            `gorm:"type:text;not null"                                            json:"reason"`
	BatchID    uuid.UUID         `gorm:"type:uuid;not null;index"                                      json:"batchId"`
	Payload    datatypes.JSON    `gorm:"type:jsonb"                                                    json:"payload,omitempty"`
}
