package model

import "encoding/json"

// DeleteConfirmation is the phrase a visitor must type to delete their account.
const DeleteConfirmation = "DELETE"

// Profile is a student or teacher profile as returned by the backend. The
// password is never part of it.
type Profile struct {
	ID           string   `json:"id,omitempty"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	ProfileImage string   `json:"profileImage"`
	Subjects     []string `json:"subjects,omitempty"`
}

// UnmarshalJSON accepts "_id" and falls back to "imageURL" for the picture.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID      string   `json:"_id"`
		ID           string   `json:"id"`
		Username     string   `json:"username"`
		Email        string   `json:"email"`
		ProfileImage string   `json:"profileImage"`
		ImageURL     string   `json:"imageURL"`
		Subjects     []string `json:"subjects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Profile{
		ID:           raw.MongoID,
		Username:     raw.Username,
		Email:        raw.Email,
		ProfileImage: raw.ProfileImage,
		Subjects:     raw.Subjects,
	}
	if p.ID == "" {
		p.ID = raw.ID
	}
	if p.ProfileImage == "" {
		p.ProfileImage = raw.ImageURL
	}
	return nil
}

// ProfileForm is the edit form. An empty password leaves it unchanged.
type ProfileForm struct {
	Username string   `form:"username" binding:"required,min=2,max=50"`
	Email    string   `form:"email" binding:"required,email"`
	Password string   `form:"password" binding:"omitempty,min=6,max=128"`
	Subjects []string `form:"subjects" binding:"dive,max=60"`
}

// ProfileUpdate is what the API client sends on PUT profile.
type ProfileUpdate struct {
	Username     string
	Email        string
	Password     string
	Subjects     []string
	ProfileImage *FilePart
}

// DeleteAccountForm carries both confirmation steps.
type DeleteAccountForm struct {
	Confirm      bool   `form:"confirm"`
	Confirmation string `form:"confirmation"`
}
