package bot

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/legendauc/auctionbot/internal/models"
	"github.com/legendauc/auctionbot/internal/services"
)

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, msg OutgoingMessage) (int, error) {
	args := m.Called(ctx, msg)
	return args.Int(0), args.Error(1)
}

func (m *MockMessenger) Edit(ctx context.Context, edit Edit) error {
	return m.Called(ctx, edit).Error(0)
}

func (m *MockMessenger) AnswerCallback(ctx context.Context, callbackID, text, url string) error {
	return m.Called(ctx, callbackID, text, url).Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordBid(ctx context.Context, auctionID, bidderID int64, bidderName string, amount int64) (*models.Leader, error) {
	args := m.Called(ctx, auctionID, bidderID, bidderName, amount)
	leader, _ := args.Get(0).(*models.Leader)
	return leader, args.Error(1)
}

func (m *MockLedger) RetractLastBid(ctx context.Context, auctionID int64) (*services.RetractResult, error) {
	args := m.Called(ctx, auctionID)
	result, _ := args.Get(0).(*services.RetractResult)
	return result, args.Error(1)
}

func (m *MockLedger) GetAuction(ctx context.Context, auctionID int64) (*models.Auction, error) {
	args := m.Called(ctx, auctionID)
	a, _ := args.Get(0).(*models.Auction)
	return a, args.Error(1)
}

func (m *MockLedger) GetAuctionByMessageID(ctx context.Context, channelMessageID int64) (*models.Auction, error) {
	args := m.Called(ctx, channelMessageID)
	a, _ := args.Get(0).(*models.Auction)
	return a, args.Error(1)
}

func (m *MockLedger) ListActiveByCategory(ctx context.Context) (services.CategorizedAuctions, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(services.CategorizedAuctions)
	return c, args.Error(1)
}

func (m *MockLedger) BidHistory(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	args := m.Called(ctx, auctionID)
	bids, _ := args.Get(0).([]models.Bid)
	return bids, args.Error(1)
}

func (m *MockLedger) LeadingBids(ctx context.Context, userID int64) ([]models.LeadingBid, error) {
	args := m.Called(ctx, userID)
	bids, _ := args.Get(0).([]models.LeadingBid)
	return bids, args.Error(1)
}

func (m *MockLedger) CloseAuction(ctx context.Context, auctionID int64) error {
	return m.Called(ctx, auctionID).Error(0)
}

func (m *MockLedger) CheckIntegrity(ctx context.Context) (*models.IntegrityReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*models.IntegrityReport)
	return r, args.Error(1)
}

type MockSubmissions struct {
	mock.Mock
}

func (m *MockSubmissions) Create(ctx context.Context, userID int64, payload models.SubmissionPayload) (int64, error) {
	args := m.Called(ctx, userID, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissions) Approve(ctx context.Context, id int64, poster services.ChannelPoster) (*services.ApprovalResult, error) {
	args := m.Called(ctx, id, poster)
	r, _ := args.Get(0).(*services.ApprovalResult)
	return r, args.Error(1)
}

func (m *MockSubmissions) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Submission)
	return s, args.Error(1)
}

func (m *MockSubmissions) ListApprovedByUser(ctx context.Context, userID int64) ([]models.Submission, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).([]models.Submission)
	return s, args.Error(1)
}

func (m *MockSubmissions) CleanupRejected(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockStatus struct {
	mock.Mock
}

func (m *MockStatus) Get(ctx context.Context) (models.SystemStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SystemStatus), args.Error(1)
}

func (m *MockStatus) SetGate(ctx context.Context, g models.Gate, open bool) error {
	return m.Called(ctx, g, open).Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) IsVerified(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerifier) Verify(ctx context.Context, userID int64, username string, verifiedBy int64) error {
	return m.Called(ctx, userID, username, verifiedBy).Error(0)
}

func (m *MockVerifier) Unverify(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockVerifier) List(ctx context.Context) ([]models.VerifiedUser, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]models.VerifiedUser)
	return u, args.Error(1)
}

func (m *MockVerifier) RequestVerification(ctx context.Context, userID int64, username string) (int64, error) {
	args := m.Called(ctx, userID, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerifier) PendingRequests(ctx context.Context) ([]models.VerificationRequest, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]models.VerificationRequest)
	return r, args.Error(1)
}

func (m *MockVerifier) Touch(ctx context.Context, userID int64, username string) error {
	return m.Called(ctx, userID, username).Error(0)
}

func (m *MockVerifier) IncrementBids(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockVerifier) IncrementSubmissions(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockVerifier) CleanupRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockDrafts struct {
	mock.Mock
}

func (m *MockDrafts) Load(ctx context.Context, userID int64) (services.WizardDraft, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(services.WizardDraft), args.Error(1)
}

func (m *MockDrafts) Save(ctx context.Context, d services.WizardDraft) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDrafts) Delete(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Load(ctx context.Context, userID int64) (models.BidSession, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.BidSession), args.Error(1)
}

func (m *MockSessions) Save(ctx context.Context, userID int64, session models.BidSession) error {
	return m.Called(ctx, userID, session).Error(0)
}

func (m *MockSessions) Delete(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
