package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArionMiles/finlog/pkg/api"
)

const (
	msgUnparsedSms        = "Could not parse SMS data"
	msgTxnNotFound        = "Transaction not found"
	msgTxnProcessed       = "Transaction already processed"
	msgCategoryNotFound   = "Category not found"
	msgTransactionApprove = "Transaction approved and expense created"
	msgTransactionReject  = "Transaction rejected"
)

type parseSmsRequest struct {
	SmsText string `json:"smsText" binding:"required"`
}

type approveRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	CategoryID    string `json:"categoryId" binding:"required"`
	Reason        string `json:"reason"`
}

type rejectRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Reason        string `json:"reason"`
}

// parseSms extracts a transaction from SMS text and stores it for review,
// pre-filling the category learned for the merchant.
func (s *Server) parseSms(c *gin.Context) {
	var req parseSmsRequest
	if !bindJSON(c, &req) {
		return
	}

	parsed := s.parser.Parse(req.SmsText)
	if parsed.Amount == nil || *parsed.Amount == 0 || parsed.MerchantName == "" {
		s.metrics.smsParsed.WithLabelValues("unparsed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    msgUnparsedSms,
			"parsedData": parsed,
			"smsText":    req.SmsText,
		})
		return
	}
	s.metrics.smsParsed.WithLabelValues("parsed").Inc()

	ctx := c.Request.Context()
	txn := &api.SmsTransaction{
		UserID:          userID(c),
		Amount:          *parsed.Amount,
		MerchantName:    parsed.MerchantName,
		TransactionDate: parsed.Date,
		SmsText:         req.SmsText,
	}

	category, err := s.store.LookupMerchantCategory(ctx, txn.UserID, txn.MerchantName)
	switch {
	case err == nil:
		txn.Category = category
	case !errors.Is(err, api.ErrNotFound):
		s.serverError(c, fmt.Errorf("looking up merchant category: %w", err))
		return
	}

	if err := s.store.AddSmsTransaction(ctx, txn); err != nil {
		s.serverError(c, fmt.Errorf("storing sms transaction: %w", err))
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (s *Server) pendingSms(c *gin.Context) {
	txns, err := s.store.ListPendingSmsTransactions(c.Request.Context(), userID(c))
	if err != nil {
		s.serverError(c, fmt.Errorf("listing pending sms transactions: %w", err))
		return
	}
	c.JSON(http.StatusOK, txns)
}

// ownedPending loads a transaction that belongs to the caller and is still
// pending. It writes the error response and returns nil otherwise.
func (s *Server) ownedPending(c *gin.Context, id string) *api.SmsTransaction {
	if _, err := uuid.Parse(id); err != nil {
		message(c, http.StatusNotFound, msgTxnNotFound)
		return nil
	}

	txn, err := s.store.GetSmsTransaction(c.Request.Context(), id)
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgTxnNotFound)
		return nil
	case err != nil:
		s.serverError(c, fmt.Errorf("loading sms transaction: %w", err))
		return nil
	}

	if txn.UserID != userID(c) {
		message(c, http.StatusNotFound, msgTxnNotFound)
		return nil
	}
	if txn.Status != api.SmsPending {
		message(c, http.StatusBadRequest, msgTxnProcessed)
		return nil
	}
	return txn
}

// approveSms turns a pending transaction into an expense and remembers the
// chosen category for the merchant.
func (s *Server) approveSms(c *gin.Context) {
	var req approveRequest
	if !bindJSON(c, &req) {
		return
	}

	txn := s.ownedPending(c, req.TransactionID)
	if txn == nil {
		return
	}

	ctx := c.Request.Context()
	if _, err := uuid.Parse(req.CategoryID); err != nil {
		message(c, http.StatusBadRequest, msgCategoryNotFound)
		return
	}
	category, err := s.store.GetCategory(ctx, req.CategoryID)
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusBadRequest, msgCategoryNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("loading category: %w", err))
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Payment to " + txn.MerchantName
	}
	expense := &api.Expense{
		UserID:       txn.UserID,
		Amount:       txn.Amount,
		Category:     category.Name,
		Reason:       reason,
		Date:         txn.TransactionDate,
		MerchantName: txn.MerchantName,
	}

	approval := api.Approval{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		CategoryID:    category.ID,
		Reason:        req.Reason,
	}
	err = s.store.ApproveSmsTransaction(ctx, approval, expense)
	switch {
	case errors.Is(err, api.ErrConflict):
		message(c, http.StatusBadRequest, msgTxnProcessed)
		return
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgTxnNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("approving sms transaction: %w", err))
		return
	}

	s.metrics.smsReviewed.WithLabelValues(string(api.SmsApproved)).Inc()
	c.JSON(http.StatusOK, gin.H{"message": msgTransactionApprove, "expense": expense})
}

func (s *Server) rejectSms(c *gin.Context) {
	var req rejectRequest
	if !bindJSON(c, &req) {
		return
	}

	txn := s.ownedPending(c, req.TransactionID)
	if txn == nil {
		return
	}

	err := s.store.RejectSmsTransaction(c.Request.Context(), txn.ID, req.Reason)
	switch {
	case errors.Is(err, api.ErrConflict):
		message(c, http.StatusBadRequest, msgTxnProcessed)
		return
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgTxnNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("rejecting sms transaction: %w", err))
		return
	}

	s.metrics.smsReviewed.WithLabelValues(string(api.SmsRejected)).Inc()
	message(c, http.StatusOK, msgTransactionReject)
}

func (s *Server) merchantCategories(c *gin.Context) {
	mappings, err := s.store.ListMerchantCategories(c.Request.Context(), userID(c))
	if err != nil {
		s.serverError(c, fmt.Errorf("listing merchant categories: %w", err))
		return
	}
	c.JSON(http.StatusOK, mappings)
}
