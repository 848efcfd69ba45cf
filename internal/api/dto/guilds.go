package dto

type CreateGuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r CreateGuildRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Guild name is required"
	}

	return errors
}

type UpdateGuildRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateGuildRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == nil && r.Description == nil {
		errors["name"] = "Name or description must be provided"
	}
	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Guild name cannot be empty"
	}

	return errors
}

type GuildListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int64  `json:"member_count"`
}
