package server

import (
	"errors"
	"net/http"

	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createReviewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title" binding:"required"`
	Comment   string `json:"comment" binding:"required"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func (s *Server) createReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}
	if _, err := s.deps.Products.GetByID(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
		return
	}

	// Reviews from buyers with a paid order containing the product are
	// flagged verified.
	verified, err := s.deps.Orders.UserHasPaidOrderWith(c.Request.Context(), userID, productID)
	if err != nil {
		s.logger.Warn("failed to check purchase history", zap.Error(err))
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Verified:  verified,
	}
	if err := review.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := s.deps.Reviews.Create(c.Request.Context(), review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "you have already reviewed this product"})
			return
		}
		s.logger.Error("failed to create review", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (s *Server) listProductReviews(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	reviews, err := s.deps.Reviews.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		s.logger.Error("failed to list reviews", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// reviewForCaller fetches a review and enforces the ownership rule: owners
// may touch their own reviews, admins may touch any when adminOK is set.
func (s *Server) reviewForCaller(c *gin.Context, adminOK bool) (*models.Review, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid review id"})
		return nil, false
	}

	review, err := s.deps.Reviews.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "review not found"})
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to get review", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to get review"})
		return nil, false
	}

	owner := review.UserID.Hex() == c.GetString(ctxUserID)
	if !owner && !(adminOK && isAdmin(c)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to modify this review"})
		return nil, false
	}
	return review, true
}

func (s *Server) updateReview(c *gin.Context) {
	review, ok := s.reviewForCaller(c, false)
	if !ok {
		return
	}

	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Rating != 0 {
		review.Rating = req.Rating
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}
	if err := review.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := s.deps.Reviews.Update(c.Request.Context(), review); err != nil {
		s.logger.Error("failed to update review", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update review"})
		return
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) deleteReview(c *gin.Context) {
	review, ok := s.reviewForCaller(c, true)
	if !ok {
		return
	}

	if err := s.deps.Reviews.Delete(c.Request.Context(), review.ID); err != nil {
		s.logger.Error("failed to delete review", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review removed"})
}
