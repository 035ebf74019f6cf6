package models

import "time"

// TagActiveSubscription marks patient profiles with at least one active
// billing agreement.
const TagActiveSubscription = "active-subscription"

// PatientTag is a label on a patient profile, scoped per clinic.
type PatientTag struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClinicID  string    `gorm:"column:clinic_id;type:varchar(64);not null;uniqueIndex:unique_clinic_patient_tag,priority:1" json:"clinic_id"`
	PatientID string    `gorm:"column:patient_id;type:varchar(64);not null;uniqueIndex:unique_clinic_patient_tag,priority:2" json:"patient_id"`
	Tag       string    `gorm:"column:tag;type:varchar(64);not null;uniqueIndex:unique_clinic_patient_tag,priority:3" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

func (PatientTag) TableName() string {
	return "patient_tag"
}
