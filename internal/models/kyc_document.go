package models

import (
	"time"
)

// KycDocumentType enumerates accepted identity documents
type KycDocumentType string

const (
	KycDocPAN                      KycDocumentType = "pan"
	KycDocAadhaar                  KycDocumentType = "aadhaar"
	KycDocAddressProof             KycDocumentType = "address_proof"
	KycDocBankStatement            KycDocumentType = "bank_statement"
	KycDocGSTCertificate           KycDocumentType = "gst_certificate"
	KycDocIncorporationCertificate KycDocumentType = "incorporation_certificate"
)

// KycDocumentTypes lists every accepted type in display order
var KycDocumentTypes = []KycDocumentType{
	KycDocPAN,
	KycDocAadhaar,
	KycDocAddressProof,
	KycDocBankStatement,
	KycDocGSTCertificate,
	KycDocIncorporationCertificate,
}

// RequiredKycDocumentTypes must all be approved for a user to be verified
var RequiredKycDocumentTypes = []KycDocumentType{
	KycDocPAN,
	KycDocAadhaar,
	KycDocAddressProof,
	KycDocBankStatement,
}

// Valid reports whether t is a known document type
func (t KycDocumentType) Valid() bool {
	for _, known := range KycDocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// KycDocumentStatus defines the review state of an uploaded document
type KycDocumentStatus string

const (
	KycDocumentPending  KycDocumentStatus = "pending"
	KycDocumentApproved KycDocumentStatus = "approved"
	KycDocumentRejected KycDocumentStatus = "rejected"
)

var kycTransitions = map[KycDocumentStatus][]KycDocumentStatus{
	KycDocumentPending: {KycDocumentApproved, KycDocumentRejected},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s KycDocumentStatus) CanTransitionTo(next KycDocumentStatus) bool {
	return canTransition(kycTransitions, s, next)
}

// KycDocument is an uploaded identity document awaiting review.
// The newest upload for a type supersedes older ones.
type KycDocument struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       string            `gorm:"type:varchar(255);not null;index" json:"userId"`
	DocumentType KycDocumentType   `gorm:"type:varchar(40);not null;index" json:"documentType"`
	FileName     string            `gorm:"not null" json:"fileName"`
	FileURL      string            `gorm:"column:file_url;type:text;not null" json:"fileUrl"`
	Status       KycDocumentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for KycDocument model
func (KycDocument) TableName() string {
	return "kyc_documents"
}

func (k *KycDocument) SetOwnerID(userID string) { k.UserID = userID }
func (k *KycDocument) GetEntityType() string { return "kyc document" }
