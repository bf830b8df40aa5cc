package model

import "time"

// Scene is a read-mostly reference record describing a backdrop/style that
// can be selected as a generation parameter.
type Scene struct {
	ID          string
	Name        string
	Prompt      string
	PreviewPath string
	Seeded      bool
	CreatedAt   time.Time
}

// UserModel describes a model "character" whose appearance attributes are
// composed into the generation prompt. Created by the user or seeded.
type UserModel struct {
	ID          string
	UserID      string
	Name        string
	Gender      string
	SkinTone    string
	HairStyle   string
	HairColor   string
	Age         string
	Attributes  string
	PreviewPath string
	CreatedAt   time.Time
}
