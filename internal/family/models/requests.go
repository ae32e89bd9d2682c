package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "kinfolk/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns the first validator failure into a readable coded error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "nefield":
		msg = fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param())
	case "url":
		msg = fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return dErrors.New(dErrors.CodeValidation, msg)
}

// ParseLifespan parses optional birth and death dates and checks their order.
func ParseLifespan(birth, death string) (*Date, *Date, error) {
	b, err := ParseOptionalDate(birth)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
	}
	d, err := ParseOptionalDate(death)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "death_date must be YYYY-MM-DD")
	}
	if b != nil && d != nil && d.Before(b.Time) {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "death_date cannot be before birth_date")
	}
	return b, d, nil
}

// CreatePersonRequest adds a person, optionally linked to an existing origin
// person in the same transaction.
type CreatePersonRequest struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	BirthDate   string `json:"birth_date"`
	DeathDate   string `json:"death_date"`
	PortraitURL string `json:"portrait_url" validate:"omitempty,url,max=2048"`
	Bio         string `json:"bio" validate:"max=10000"`
	FatherID    string `json:"father_id"`
	MotherID    string `json:"mother_id"`

	OriginID      string `json:"origin_id"`
	Relation      string `json:"relation" validate:"omitempty,oneof=father mother spouse child"`
	OriginRole    string `json:"origin_role" validate:"omitempty,oneof=father mother"`
	OtherParentID string `json:"other_parent_id"`
}

func (r *CreatePersonRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.DeathDate = strings.TrimSpace(r.DeathDate)
	r.PortraitURL = strings.TrimSpace(r.PortraitURL)
	r.Bio = strings.TrimSpace(r.Bio)
	r.FatherID = strings.TrimSpace(r.FatherID)
	r.MotherID = strings.TrimSpace(r.MotherID)
	r.OriginID = strings.TrimSpace(r.OriginID)
	r.Relation = strings.ToLower(strings.TrimSpace(r.Relation))
	r.OriginRole = strings.ToLower(strings.TrimSpace(r.OriginRole))
	r.OtherParentID = strings.TrimSpace(r.OtherParentID)
}

func (r *CreatePersonRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if (r.OriginID == "") != (r.Relation == "") {
		return dErrors.New(dErrors.CodeValidation, "origin_id and relation must be given together")
	}
	if r.FatherID != "" && r.FatherID == r.MotherID {
		return dErrors.New(dErrors.CodeValidation, "father_id and mother_id must differ")
	}
	_, _, err := ParseLifespan(r.BirthDate, r.DeathDate)
	return err
}

// UpdatePersonRequest patches profile fields. Nil fields are left as they
// are; an empty date string clears the date.
type UpdatePersonRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=200"`
	BirthDate   *string `json:"birth_date"`
	DeathDate   *string `json:"death_date"`
	PortraitURL *string `json:"portrait_url" validate:"omitempty,max=2048"`
	Bio         *string `json:"bio" validate:"omitempty,max=10000"`
}

func (r *UpdatePersonRequest) Normalize() {
	for _, f := range []*string{r.FullName, r.BirthDate, r.DeathDate, r.PortraitURL, r.Bio} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdatePersonRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if r.FullName != nil && *r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name cannot be empty")
	}
	return nil
}

// Apply merges the patch into p and re-checks the lifespan.
func (r *UpdatePersonRequest) Apply(p *Person) error {
	if r.FullName != nil {
		p.FullName = *r.FullName
	}
	if r.PortraitURL != nil {
		p.PortraitURL = *r.PortraitURL
	}
	if r.Bio != nil {
		p.Bio = *r.Bio
	}
	birth, death := p.BirthDate, p.DeathDate
	if r.BirthDate != nil {
		d, err := ParseOptionalDate(*r.BirthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
		}
		birth = d
	}
	if r.DeathDate != nil {
		d, err := ParseOptionalDate(*r.DeathDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "death_date must be YYYY-MM-DD")
		}
		death = d
	}
	if birth != nil && death != nil && death.Before(birth.Time) {
		return dErrors.New(dErrors.CodeValidation, "death_date cannot be before birth_date")
	}
	p.BirthDate, p.DeathDate = birth, death
	return nil
}

// SetParentsRequest replaces both parent ids. Empty means unknown.
type SetParentsRequest struct {
	FatherID string `json:"father_id"`
	MotherID string `json:"mother_id"`
}

func (r *SetParentsRequest) Normalize() {
	r.FatherID = strings.TrimSpace(r.FatherID)
	r.MotherID = strings.TrimSpace(r.MotherID)
}

func (r *SetParentsRequest) Validate() error {
	if r.FatherID != "" && r.FatherID == r.MotherID {
		return dErrors.New(dErrors.CodeValidation, "father_id and mother_id must differ")
	}
	return nil
}

// CreateUnionRequest joins two existing people.
type CreateUnionRequest struct {
	Person1ID   string `json:"person1_id" validate:"required"`
	Person2ID   string `json:"person2_id" validate:"required,nefield=Person1ID"`
	UnionDate   string `json:"union_date"`
	DivorceDate string `json:"divorce_date"`
	Type        string `json:"type" validate:"omitempty,oneof=marriage partnership other"`
}

func (r *CreateUnionRequest) Normalize() {
	r.Person1ID = strings.TrimSpace(r.Person1ID)
	r.Person2ID = strings.TrimSpace(r.Person2ID)
	r.UnionDate = strings.TrimSpace(r.UnionDate)
	r.DivorceDate = strings.TrimSpace(r.DivorceDate)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
}

func (r *CreateUnionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	_, _, err := r.Dates()
	return err
}

// Dates parses the union and divorce dates.
func (r *CreateUnionRequest) Dates() (*Date, *Date, error) {
	u, err := ParseOptionalDate(r.UnionDate)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "union_date must be YYYY-MM-DD")
	}
	d, err := ParseOptionalDate(r.DivorceDate)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "divorce_date must be YYYY-MM-DD")
	}
	if u != nil && d != nil && d.Before(u.Time) {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "divorce_date cannot be before union_date")
	}
	return u, d, nil
}

// LinkRequest links an existing target person to the origin in the URL.
type LinkRequest struct {
	TargetID      string `json:"target_id" validate:"required"`
	Relation      string `json:"relation" validate:"required,oneof=father mother spouse child"`
	OriginRole    string `json:"origin_role" validate:"omitempty,oneof=father mother"`
	OtherParentID string `json:"other_parent_id"`
}

func (r *LinkRequest) Normalize() {
	r.TargetID = strings.TrimSpace(r.TargetID)
	r.Relation = strings.ToLower(strings.TrimSpace(r.Relation))
	r.OriginRole = strings.ToLower(strings.TrimSpace(r.OriginRole))
	r.OtherParentID = strings.TrimSpace(r.OtherParentID)
}

func (r *LinkRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}
