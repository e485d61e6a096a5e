package flow

import (
	"regexp"
	"strings"
)

// Contact form fields that must be valid before the quiz can continue.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldCompany = "company"
)

var requiredFields = []string{FieldName, FieldEmail, FieldPhone, FieldCompany}

// emailPattern is the grammar browsers apply to <input type="email">.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// ContactForm is the lead-capture step shown before the questions.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// Validation reports per-field validity and whether continuing is allowed.
type Validation struct {
	Fields      map[string]bool `json:"fields"`
	CanContinue bool            `json:"canContinue"`
}

// Validate checks every required field.
func (f ContactForm) Validate() Validation {
	values := map[string]string{
		FieldName:    f.Name,
		FieldEmail:   f.Email,
		FieldPhone:   f.Phone,
		FieldCompany: f.Company,
	}
	v := Validation{Fields: make(map[string]bool, len(requiredFields)), CanContinue: true}
	for _, field := range requiredFields {
		value := values[field]
		if field == FieldEmail {
			// Browsers strip surrounding whitespace from email inputs only.
			value = strings.TrimSpace(value)
		}
		ok := value != ""
		if ok && field == FieldEmail {
			ok = emailPattern.MatchString(value)
		}
		v.Fields[field] = ok
		v.CanContinue = v.CanContinue && ok
	}
	return v
}
