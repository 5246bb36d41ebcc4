package todo

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// NotAnObject means the payload was not a JSON object.
	NotAnObject ErrorKind = iota + 1

	// TitleInvalid means the title was missing, empty, too long or not a string.
	TitleInvalid

	// DescriptionTooLong means the description exceeded MaxDescriptionLength
	// or was not a string.
	DescriptionTooLong

	// StatusInvalid means the status was not one of ValidStatuses.
	StatusInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case NotAnObject:
		return "not_an_object"
	case TitleInvalid:
		return "title_invalid"
	case DescriptionTooLong:
		return "description_too_long"
	case StatusInvalid:
		return "status_invalid"
	default:
		return "unknown"
	}
}

// ValidationError is returned by Validate. Message is safe to show to clients.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Input is a payload parsed into typed fields but not yet validated.
// JSON null is treated the same as an absent key.
type Input struct {
	Title       *string
	Description *string
	Status      *string
}

// ParseInput converts a decoded JSON value into an Input. Unknown keys,
// including any client-supplied id or timestamps, are ignored.
func ParseInput(payload any) (Input, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return Input{}, invalid(NotAnObject, "Request body must be a JSON object")
	}

	var in Input
	var err error
	if in.Title, err = stringField(obj, "title", TitleInvalid, "Title must be a string"); err != nil {
		return Input{}, err
	}
	if in.Description, err = stringField(obj, "description", DescriptionTooLong, "Description must be a string"); err != nil {
		return Input{}, err
	}
	if in.Status, err = stringField(obj, "status", StatusInvalid, statusMessage()); err != nil {
		return Input{}, err
	}
	return in, nil
}

func stringField(obj map[string]any, key string, kind ErrorKind, typeMsg string) (*string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, invalid(kind, "%s", typeMsg)
	}
	return &s, nil
}

// Validate parses and validates a payload. On create (isUpdate false) the
// title is required and status defaults to pending; on update every field
// is optional and absent fields stay nil.
func Validate(payload any, isUpdate bool) (Fields, error) {
	in, err := ParseInput(payload)
	if err != nil {
		return Fields{}, err
	}
	return in.Validate(isUpdate)
}

// Validate checks the parsed input and returns normalized fields.
func (in Input) Validate(isUpdate bool) (Fields, error) {
	var f Fields

	switch {
	case in.Title != nil:
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Fields{}, invalid(TitleInvalid, "Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return Fields{}, invalid(TitleInvalid, "Title must be %d characters or less", MaxTitleLength)
		}
		f.Title = &title
	case !isUpdate:
		return Fields{}, invalid(TitleInvalid, "Title is required")
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(desc) > MaxDescriptionLength {
			return Fields{}, invalid(DescriptionTooLong, "Description must be %d characters or less", MaxDescriptionLength)
		}
		f.Description = &desc
	} else if !isUpdate {
		empty := ""
		f.Description = &empty
	}

	if in.Status != nil {
		status := normalizeStatus(*in.Status)
		if !status.IsValid() {
			return Fields{}, invalid(StatusInvalid, "%s", statusMessage())
		}
		f.Status = &status
	} else if !isUpdate {
		status := StatusPending
		f.Status = &status
	}

	return f, nil
}

// ParseStatus normalizes s and reports whether it names a valid status.
func ParseStatus(s string) (Status, bool) {
	status := normalizeStatus(s)
	return status, status.IsValid()
}

// FormatValidStatuses joins the valid statuses for error messages.
func FormatValidStatuses() string {
	statuses := ValidStatuses()
	formatted := make([]string, 0, len(statuses))
	for _, s := range statuses {
		formatted = append(formatted, string(s))
	}
	return strings.Join(formatted, ", ")
}

func statusMessage() string {
	return "Status must be one of: " + FormatValidStatuses()
}

func normalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}
