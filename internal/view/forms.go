// Package view renders client state as text and validates form input
// before it is dispatched to the store.
package view

import (
	"strings"

	"inkwell/internal/client"
	"inkwell/internal/models"
	"inkwell/internal/validation"
)

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) check(field string, err error) {
	if err != nil {
		if _, exists := fe[field]; !exists {
			fe[field] = err.Error()
		}
	}
}

// OK reports whether no field failed.
func (fe FieldErrors) OK() bool { return len(fe) == 0 }

// PostForm backs the create and edit pages.
type PostForm struct {
	Title   string
	Content string
	Image   string
	Tags    []string
}

// EditForm starts a form from an existing post.
func EditForm(p models.Post) *PostForm {
	return &PostForm{
		Title:   p.Title,
		Content: p.Content,
		Image:   p.Image,
		Tags:    append([]string(nil), p.Tags...),
	}
}

// Validate applies the same title, content and image rules as the server.
func (f *PostForm) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.check("title", validation.ValidateTitle(strings.TrimSpace(f.Title)))
	errs.check("content", validation.ValidateContent(f.Content))
	errs.check("image", validation.ValidateImage(strings.TrimSpace(f.Image)))
	return errs
}

// AddTag appends the trimmed tag unless it is blank or already present.
func (f *PostForm) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range f.Tags {
		if t == tag {
			return false
		}
	}
	f.Tags = append(f.Tags, tag)
	return true
}

// RemoveTag drops tag if present.
func (f *PostForm) RemoveTag(tag string) {
	out := f.Tags[:0]
	for _, t := range f.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	f.Tags = out
}

// Input is the create request for the form.
func (f *PostForm) Input() client.PostInput {
	return client.PostInput{
		Title:   strings.TrimSpace(f.Title),
		Content: f.Content,
		Image:   strings.TrimSpace(f.Image),
		Tags:    append([]string(nil), f.Tags...),
	}
}

// Patch carries only the fields that differ from orig.
func (f *PostForm) Patch(orig models.Post) client.PostPatch {
	var p client.PostPatch
	if title := strings.TrimSpace(f.Title); title != orig.Title {
		p.Title = &title
	}
	if f.Content != orig.Content {
		content := f.Content
		p.Content = &content
	}
	if image := strings.TrimSpace(f.Image); image != orig.Image {
		p.Image = &image
	}
	if !equalTags(f.Tags, orig.Tags) {
		tags := append([]string{}, f.Tags...)
		p.Tags = &tags
	}
	return p
}

func equalTags(a []string, b models.Tags) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func checkEmail(errs FieldErrors, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case validation.ValidateEmail(email) != nil:
		errs["email"] = "Invalid email address"
	}
}

// LoginForm backs the login page.
type LoginForm struct {
	Email    string
	Password string
}

func (f *LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	checkEmail(errs, f.Email)
	if f.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

func (f *LoginForm) Request() client.LoginRequest {
	return client.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// RegisterForm backs the register page. Confirm must repeat Password.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func (f *RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.check("name", validation.ValidateName(f.Name))
	checkEmail(errs, f.Email)
	switch {
	case f.Password == "":
		errs["password"] = "Password is required"
	case validation.ValidatePassword(f.Password) != nil:
		errs["password"] = "Password must be at least 6 characters"
	}
	if f.Password != f.Confirm {
		errs["password2"] = "Passwords do not match"
	}
	return errs
}

func (f *RegisterForm) Request() client.RegisterRequest {
	return client.RegisterRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}

// ProfileForm backs the profile edit page. Blank fields are not sent.
type ProfileForm struct {
	Name   string
	Bio    string
	Avatar string
}

func (f *ProfileForm) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.check("avatar", validation.ValidateImage(strings.TrimSpace(f.Avatar)))
	errs.check("bio", validation.ValidateBio(strings.TrimSpace(f.Bio)))
	return errs
}

func (f *ProfileForm) Update() client.ProfileUpdate {
	return client.ProfileUpdate{
		Name:   strings.TrimSpace(f.Name),
		Bio:    strings.TrimSpace(f.Bio),
		Avatar: strings.TrimSpace(f.Avatar),
	}
}
