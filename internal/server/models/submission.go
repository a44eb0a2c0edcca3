// Package models defines the persistent entities of the registration server:
// submissions, team users, file attachment metadata, and the filter/patch
// structures repositories accept.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/svalekar/voterreg/internal/common"
)

// SubmissionStatus is the lifecycle state of a submission. "deleted" is a
// terminal soft-delete reachable from any state; list, search, and stats
// queries exclude it unconditionally.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
	StatusDeleted  SubmissionStatus = "deleted"
)

// Settable reports whether the status may be assigned through the status
// update endpoints. Soft deletion goes through SoftDelete only.
func (s SubmissionStatus) Settable() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// FileMeta describes one uploaded document. The bytes live in external
// object storage under Filename; only metadata is stored with the row.
type FileMeta struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// FileMap maps a logical field name (aadhaarCard, idPhoto, ...) to its stored
// file metadata. Persisted as JSONB.
type FileMap map[string]FileMeta

func (m FileMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *FileMap) Scan(src any) error {
	if src == nil {
		*m = FileMap{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into FileMap", src)
	}
}

// Submission is one citizen registration record.
type Submission struct {
	ID string `json:"id"`

	Surname       string    `json:"surname"`
	FirstName     string    `json:"firstName"`
	FathersName   string    `json:"fathersName"`
	Sex           string    `json:"sex"` // M | F
	Qualification string    `json:"qualification"`
	Occupation    string    `json:"occupation"`
	DateOfBirth   time.Time `json:"dateOfBirth"`
	AgeYears      int       `json:"ageYears"`
	AgeMonths     int       `json:"ageMonths"`

	District string `json:"district"`
	Taluka   string `json:"taluka"`
	Village  string `json:"village"`
	HouseNo  string `json:"houseNo"`
	Street   string `json:"street"`
	PinCode  string `json:"pinCode"`

	MobileNumber  string `json:"mobileNumber"`
	Email         string `json:"email,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber"`

	YearOfPassing  int    `json:"yearOfPassing"`
	DegreeName     string `json:"degreeName"`
	UniversityName string `json:"universityName"`
	DiplomaName    string `json:"diplomaName,omitempty"`
	EducationType  string `json:"educationType"` // degree | diploma
	DocumentType   string `json:"documentType"`  // certificate | markmemo

	NameChanged       bool   `json:"nameChanged"`
	PreviousName      string `json:"previousName,omitempty"`
	NameChangeDocType string `json:"nameChangeDocType,omitempty"` // marriage | gazette | pan

	Files FileMap `json:"files"`

	Status SubmissionStatus `json:"status"`

	FilledByUserID *int64 `json:"filledByUserId,omitempty"`
	FormSource     string `json:"formSource"` // public | team

	SubmittedAt time.Time  `json:"submittedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ApprovedBy  *int64     `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
}

var (
	mobileRe  = regexp.MustCompile(`^[0-9]{10}$`)
	aadhaarRe = regexp.MustCompile(`^[0-9]{12}$`)
	pinRe     = regexp.MustCompile(`^[0-9]{6}$`)
)

// Validate checks required fields and format constraints ahead of insertion.
// Age fields are range-checked here and never recomputed from DateOfBirth
// afterwards.
func (s *Submission) Validate() error {
	type check struct {
		ok    bool
		field string
	}
	checks := []check{
		{s.Surname != "", "surname"},
		{s.FirstName != "", "firstName"},
		{s.Sex == "M" || s.Sex == "F", "sex"},
		{!s.DateOfBirth.IsZero(), "dateOfBirth"},
		{s.AgeYears >= 0 && s.AgeYears <= 150, "ageYears"},
		{s.AgeMonths >= 0 && s.AgeMonths <= 11, "ageMonths"},
		{s.District != "", "district"},
		{s.Taluka != "", "taluka"},
		{pinRe.MatchString(s.PinCode), "pinCode"},
		{mobileRe.MatchString(s.MobileNumber), "mobileNumber"},
		{aadhaarRe.MatchString(s.AadhaarNumber), "aadhaarNumber"},
		{s.EducationType == "degree" || s.EducationType == "diploma", "educationType"},
		{s.DocumentType == "certificate" || s.DocumentType == "markmemo", "documentType"},
		{s.FormSource == "public" || s.FormSource == "team", "formSource"},
	}
	if s.NameChanged {
		checks = append(checks,
			check{s.PreviousName != "", "previousName"},
			check{s.NameChangeDocType == "marriage" || s.NameChangeDocType == "gazette" || s.NameChangeDocType == "pan", "nameChangeDocType"},
		)
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", common.ErrorValidation, c.field)
		}
	}
	return nil
}

// SubmissionFilter narrows List queries. Nil fields are unconstrained.
type SubmissionFilter struct {
	Status   *SubmissionStatus
	District *string
	Taluka   *string
	Limit    int
	Offset   int
}

// SubmissionStats is the aggregate produced by GetStatistics. Soft-deleted
// rows are excluded from every counter.
type SubmissionStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Today    int64 `json:"today"`
	Week     int64 `json:"week"`
	Month    int64 `json:"month"`
}

// BulkStatusResult reports partial success of a bulk status update.
type BulkStatusResult struct {
	Updated int      `json:"updated"`
	Failed  []string `json:"failed"`
}
