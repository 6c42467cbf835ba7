package models

import "github.com/google/uuid"

// DeletedUsername is shown in place of an author whose record no longer exists.
const DeletedUsername = "deleted user"

// AuthorSummary is the author shape embedded in post and comment responses.
// ID is nil when the referenced user no longer exists.
type AuthorSummary struct {
	ID       *uuid.UUID `json:"id"`
	Username string     `json:"username"`
	Avatar   string     `json:"avatar"`
	Bio      string     `json:"bio,omitempty"`
}

func SummaryOf(u *User) AuthorSummary {
	id := u.ID
	return AuthorSummary{ID: &id, Username: u.Username, Avatar: u.Avatar, Bio: u.Bio}
}

func DeletedAuthor() AuthorSummary {
	return AuthorSummary{ID: nil, Username: DeletedUsername, Avatar: ""}
}
