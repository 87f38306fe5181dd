// Package models defines data structures used throughout the culturology API.
package models

import "strconv"

// Culture is an encyclopedia entry for one people or culture, keyed by slug.
type Culture struct {
	ID         int            `json:"id" yaml:"id"`
	Slug       string         `json:"slug" yaml:"slug"`
	Name       string         `json:"name" yaml:"name"`
	Region     *string        `json:"region" yaml:"region"`
	Location   *string        `json:"location" yaml:"location"`
	Population *int64         `json:"population" yaml:"population"`
	Language   *string        `json:"language" yaml:"language"`
	About      *string        `json:"about" yaml:"about"`
	Traditions *string        `json:"traditions" yaml:"traditions"`
	Lifestyle  *string        `json:"lifestyle" yaml:"lifestyle"`
	Latitude   *float64       `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude  *float64       `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Gallery    []CultureImage `json:"gallery" yaml:"gallery"`
}

// CultureImage is one gallery picture attached to a culture.
type CultureImage struct {
	ID      int     `json:"id,omitempty" yaml:"id,omitempty"`
	URL     string  `json:"url" yaml:"url" validate:"required"`
	Caption *string `json:"caption" yaml:"caption" validate:"omitempty,max=255"`
}

// CultureInput is the body of POST /api/cultures.
type CultureInput struct {
	Name       string         `json:"name" yaml:"name" validate:"required,min=2,max=100"`
	Slug       string         `json:"slug" yaml:"slug" validate:"required,min=2,max=128,slug"`
	Region     *string        `json:"region" yaml:"region" validate:"omitempty,max=100"`
	Location   *string        `json:"location" yaml:"location" validate:"omitempty,max=150"`
	Population *int64         `json:"population" yaml:"population" validate:"omitempty,gte=0"`
	Language   *string        `json:"language" yaml:"language" validate:"omitempty,max=150"`
	About      *string        `json:"about" yaml:"about"`
	Traditions *string        `json:"traditions" yaml:"traditions"`
	Lifestyle  *string        `json:"lifestyle" yaml:"lifestyle"`
	Latitude   *float64       `json:"latitude" yaml:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64       `json:"longitude" yaml:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Gallery    []CultureImage `json:"gallery" yaml:"gallery" validate:"dive"`
}

// CulturePatch is the body of PUT /api/cultures/:slug. Nil fields are left unchanged;
// a non-nil Gallery replaces the whole gallery.
type CulturePatch struct {
	Name       *string         `json:"name" validate:"omitempty,min=2,max=100"`
	Slug       *string         `json:"slug" validate:"omitempty,min=2,max=128,slug"`
	Region     *string         `json:"region" validate:"omitempty,max=100"`
	Location   *string         `json:"location" validate:"omitempty,max=150"`
	Population *int64          `json:"population" validate:"omitempty,gte=0"`
	Language   *string         `json:"language" validate:"omitempty,max=150"`
	About      *string         `json:"about"`
	Traditions *string         `json:"traditions"`
	Lifestyle  *string         `json:"lifestyle"`
	Latitude   *float64        `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64        `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Gallery    *[]CultureImage `json:"gallery"`
}

// Apply copies the set fields of p onto c. The gallery is handled by the caller.
func (p CulturePatch) Apply(c *Culture) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Region != nil {
		c.Region = p.Region
	}
	if p.Location != nil {
		c.Location = p.Location
	}
	if p.Population != nil {
		c.Population = p.Population
	}
	if p.Language != nil {
		c.Language = p.Language
	}
	if p.About != nil {
		c.About = p.About
	}
	if p.Traditions != nil {
		c.Traditions = p.Traditions
	}
	if p.Lifestyle != nil {
		c.Lifestyle = p.Lifestyle
	}
	if p.Latitude != nil {
		c.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		c.Longitude = p.Longitude
	}
}

// ToCulture builds an unsaved Culture from the input.
func (in CultureInput) ToCulture() *Culture {
	return &Culture{
		Slug:       in.Slug,
		Name:       in.Name,
		Region:     in.Region,
		Location:   in.Location,
		Population: in.Population,
		Language:   in.Language,
		About:      in.About,
		Traditions: in.Traditions,
		Lifestyle:  in.Lifestyle,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Gallery:    in.Gallery,
	}
}

// PromptFields are the culture's text values as prompts and fallback answers see them.
// Absent values are empty strings.
type PromptFields struct {
	Name       string
	Region     string
	Location   string
	Population string
	Language   string
	About      string
	Traditions string
	Lifestyle  string
}

// PromptFields flattens the optional fields. Population is rendered in decimal.
func (c *Culture) PromptFields() PromptFields {
	f := PromptFields{
		Name:       c.Name,
		Region:     deref(c.Region),
		Location:   deref(c.Location),
		Language:   deref(c.Language),
		About:      deref(c.About),
		Traditions: deref(c.Traditions),
		Lifestyle:  deref(c.Lifestyle),
	}
	if c.Population != nil {
		f.Population = strconv.FormatInt(*c.Population, 10)
	}
	return f
}

// Field returns the named prompt field and whether the name is known.
func (f PromptFields) Field(name string) (string, bool) {
	switch name {
	case "name":
		return f.Name, true
	case "region":
		return f.Region, true
	case "location":
		return f.Location, true
	case "population":
		return f.Population, true
	case "language":
		return f.Language, true
	case "about":
		return f.About, true
	case "traditions":
		return f.Traditions, true
	case "lifestyle":
		return f.Lifestyle, true
	}
	return "", false
}

// CulturePoint is a culture that can be placed on the map.
type CulturePoint struct {
	Slug string  `json:"slug"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
