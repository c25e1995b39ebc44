package model

import "time"

// Category groups products in the catalog.  Image holds a relative storage
// path such as "uploads/sofa.png" or is empty when no image was uploaded.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique name, compared case-insensitively.
//  Image     – relative path of the category picture (optional).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Category struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
