// Package site holds marketing-site content that lives alongside the travel
// catalog: FAQ entries, customer testimonials, and newsletter subscribers.
package site

import "time"

// FAQ is one question/answer pair shown on the landing page.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"pergunta"`
	Answer   string `json:"resposta"`
}

// Testimonial is a customer quote. Type discriminates the source surface
// (e.g. "google", "site").
type Testimonial struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Subscriber is a newsletter signup captured from the inquiry funnel.
type Subscriber struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
