package handlers

import (
	"net/http"

	"github.com/nicolep999/moodie/services/reviews"
)

// ReviewHandler serves review and comment mutations. All routes require a
// logged-in user.
type ReviewHandler struct {
	reviews *reviews.Service
}

func NewReviewHandler(rev *reviews.Service) *ReviewHandler {
	return &ReviewHandler{reviews: rev}
}

type reviewBody struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create posts a review on a movie.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body reviewBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	review, err := h.reviews.Create(currentUser(r), movieID, reviews.ReviewInput{
		Rating:  body.Rating,
		Title:   body.Title,
		Content: body.Content,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": review})
	return nil
}

// Update edits the viewer's review.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) error {
	reviewID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body reviewBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	review, err := h.reviews.Update(currentUser(r), reviewID, reviews.ReviewInput{
		Rating:  body.Rating,
		Title:   body.Title,
		Content: body.Content,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"review": review})
	return nil
}

// Delete removes a review (author or staff).
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	reviewID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(currentUser(r), reviewID); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	return nil
}

// Comments lists a review's comments.
func (h *ReviewHandler) Comments(w http.ResponseWriter, r *http.Request) error {
	reviewID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	comments, err := h.reviews.Comments(reviewID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
	return nil
}

// AddComment posts a comment under a review.
func (h *ReviewHandler) AddComment(w http.ResponseWriter, r *http.Request) error {
	reviewID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	comment, err := h.reviews.AddComment(currentUser(r), reviewID, body.Content)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment": comment})
	return nil
}

// DeleteComment removes a comment (author or staff).
func (h *ReviewHandler) DeleteComment(w http.ResponseWriter, r *http.Request) error {
	commentID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.DeleteComment(currentUser(r), commentID); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	return nil
}
