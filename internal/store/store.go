package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account. Marketplace roles are derived
// from the existence of a freelancer or client profile row.
type User struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// FreelancerProfile holds freelancer-specific data for a user.
type FreelancerProfile struct {
	UserID  int64
	Bio     string
	Rating  float64
	Skills  []Skill
}

// ClientProfile holds client-specific data for a user.
type ClientProfile struct {
	UserID     int64
	Categories []Category
}

// Category groups related skills and services.
type Category struct {
	ID          int64
	Name        string
	Description string
	Skills      []Skill
}

// Skill is a named capability belonging to a category.
type Skill struct {
	ID         int64
	Name       string
	CategoryID int64
}

// Service is a listing offered by a freelancer.
type Service struct {
	ID           int64
	FreelancerID int64
	Title        string
	Description  string
	Price        float64
	IsActive     bool
	Categories   []Category
}

// ProposalStatus tracks the lifecycle of a proposal.
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "Pending"
	ProposalStatusAccepted ProposalStatus = "Accepted"
	ProposalStatusDeclined ProposalStatus = "Declined"
)

// Proposal is a client's offer to a freelancer for a service.
type Proposal struct {
	ID            int64
	ClientID      int64
	FreelancerID  int64
	ServiceID     int64
	ProposedPrice float64
	Status        ProposalStatus
	ProposalDate  time.Time
}

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusCompleted  OrderStatus = "Completed"
)

// Order is a client's purchase of a service.
type Order struct {
	ID           int64
	ClientID     int64
	ServiceID    int64
	OrderDate    time.Time
	DeliveryDate time.Time
	TotalAmount  float64
	Status       OrderStatus
}

// PaymentStatus tracks the lifecycle of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
)

// Payment records a payment attempt for an order, verified against the
// Khalti gateway.
type Payment struct {
	ID                  int64
	OrderID             int64
	UserID              int64
	Status              PaymentStatus
	Amount              float64
	PaymentDate         time.Time
	KhaltiToken         *string
	KhaltiTransactionID *string
	IsVerified          bool
}

// Review is a client's rating of a freelancer.
type Review struct {
	ID           int64
	FreelancerID int64
	ClientID     int64
	Message      string
	Rating       int
	CreatedAt    time.Time
}

// PasswordResetToken is a single-use expiring credential for password resets.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// ChatMessage is a durable chat message between two users.
// Messages are append-only: created once, never mutated, never deleted.
type ChatMessage struct {
	ID         int64
	SenderID   string
	ReceiverID string
	Content    string
	Timestamp  time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, email, phone, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUserPassword replaces the stored password hash.
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
}

// ProfileStore handles freelancer and client profiles.
type ProfileStore interface {
	// CreateFreelancerProfile creates a freelancer profile for a user.
	CreateFreelancerProfile(ctx context.Context, userID int64, bio string) error

	// CreateClientProfile creates a client profile for a user.
	CreateClientProfile(ctx context.Context, userID int64) error

	// GetFreelancerProfile retrieves a freelancer profile with skills.
	GetFreelancerProfile(ctx context.Context, userID int64) (*FreelancerProfile, error)

	// GetClientProfile retrieves a client profile with preferred categories.
	GetClientProfile(ctx context.Context, userID int64) (*ClientProfile, error)

	// UpdateFreelancerBio updates the freelancer's bio text.
	UpdateFreelancerBio(ctx context.Context, userID int64, bio string) error

	// SetFreelancerSkills replaces the freelancer's skill set.
	SetFreelancerSkills(ctx context.Context, userID int64, skillIDs []int64) error

	// SetClientCategories replaces the client's preferred categories.
	SetClientCategories(ctx context.Context, userID int64, categoryIDs []int64) error

	// IsFreelancer reports whether the user has a freelancer profile.
	IsFreelancer(ctx context.Context, userID int64) (bool, error)

	// IsClient reports whether the user has a client profile.
	IsClient(ctx context.Context, userID int64) (bool, error)
}

// CatalogStore handles categories, skills and service listings.
type CatalogStore interface {
	// CreateCategory creates a category, returning the existing one on name conflict.
	CreateCategory(ctx context.Context, name, description string) (*Category, error)

	// CreateSkill creates a skill under a category, returning the existing one on name conflict.
	CreateSkill(ctx context.Context, name string, categoryID int64) (*Skill, error)

	// ListCategories lists all categories with their skills.
	ListCategories(ctx context.Context) ([]*Category, error)

	// GetSkillsByNames resolves skill names to records; unknown names are skipped.
	GetSkillsByNames(ctx context.Context, names []string) ([]Skill, error)

	// CreateService creates a service and links it to the given categories.
	CreateService(ctx context.Context, svc *Service, categoryIDs []int64) (*Service, error)

	// GetServiceByID retrieves a service with its categories.
	GetServiceByID(ctx context.Context, id int64) (*Service, error)

	// UpdateService updates mutable service fields.
	UpdateService(ctx context.Context, svc *Service) error

	// ListServices lists all active services.
	ListServices(ctx context.Context) ([]*Service, error)

	// ListServicesForFreelancer lists all of a freelancer's services, active or not.
	ListServicesForFreelancer(ctx context.Context, freelancerID int64) ([]*Service, error)

	// SearchServicesByCategories lists active services linked to any of the named categories.
	SearchServicesByCategories(ctx context.Context, names []string) ([]*Service, error)

	// SearchServicesBySkills lists active services whose freelancer has any of the named skills.
	SearchServicesBySkills(ctx context.Context, names []string) ([]*Service, error)
}

// ProposalStore handles proposals.
type ProposalStore interface {
	// CreateProposal creates a pending proposal.
	CreateProposal(ctx context.Context, p *Proposal) (*Proposal, error)

	// GetProposalByID retrieves a proposal.
	GetProposalByID(ctx context.Context, id int64) (*Proposal, error)

	// ListProposalsForFreelancer lists proposals addressed to a freelancer.
	ListProposalsForFreelancer(ctx context.Context, freelancerID int64) ([]*Proposal, error)

	// UpdateProposalStatus transitions a proposal.
	UpdateProposalStatus(ctx context.Context, id int64, status ProposalStatus) error
}

// OrderStore handles orders.
type OrderStore interface {
	// CreateOrder creates a pending order.
	CreateOrder(ctx context.Context, o *Order) (*Order, error)

	// GetOrderByID retrieves an order.
	GetOrderByID(ctx context.Context, id int64) (*Order, error)

	// ListClientOrdersForService lists a client's orders for one service.
	ListClientOrdersForService(ctx context.Context, clientID, serviceID int64) ([]*Order, error)

	// UpdateOrderStatus transitions an order.
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error
}

// PaymentStore handles payments.
type PaymentStore interface {
	// CreatePayment creates a pending payment for an order.
	CreatePayment(ctx context.Context, p *Payment) (*Payment, error)

	// GetPendingPaymentForOrder returns the pending payment for an order, if any.
	GetPendingPaymentForOrder(ctx context.Context, orderID int64) (*Payment, error)

	// GetPaymentForOrderAmount returns a payment for an order matching the amount.
	GetPaymentForOrderAmount(ctx context.Context, orderID int64, amount float64) (*Payment, error)

	// MarkPaymentVerified records a successful gateway verification.
	MarkPaymentVerified(ctx context.Context, id int64, token, transactionID string) error
}

// ReviewStore handles reviews.
type ReviewStore interface {
	// CreateReview records a client's review of a freelancer.
	CreateReview(ctx context.Context, r *Review) (*Review, error)

	// ListReviewsForFreelancer lists reviews for a freelancer, newest first.
	ListReviewsForFreelancer(ctx context.Context, freelancerID int64) ([]*Review, error)
}

// MessageStore handles durable chat message persistence.
type MessageStore interface {
	// SaveChatMessage appends a chat message with a store-assigned timestamp.
	SaveChatMessage(ctx context.Context, senderID, receiverID, content string) (*ChatMessage, error)

	// ListConversation returns all messages between two users in either
	// direction, ordered ascending by timestamp.
	ListConversation(ctx context.Context, userA, userB string) ([]*ChatMessage, error)
}

// ResetTokenStore handles password reset tokens.
type ResetTokenStore interface {
	// CreateResetToken stores a reset token for a user.
	CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// GetResetToken retrieves a reset token by value.
	GetResetToken(ctx context.Context, token string) (*PasswordResetToken, error)

	// MarkResetTokenUsed consumes a token.
	MarkResetTokenUsed(ctx context.Context, id int64) error

	// DeleteExpiredResetTokens prunes tokens that expired before now.
	// It never touches chat messages or any other data.
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ProfileStore
	CatalogStore
	ProposalStore
	OrderStore
	PaymentStore
	ReviewStore
	MessageStore
	ResetTokenStore

	// Close closes the underlying database connection.
	Close() error
}
