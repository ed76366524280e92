package models

import "time"

// Join states reported to the UI
const (
	StateIdle         = "idle"
	StateResolving    = "resolving"
	StateAwaitingAuth = "awaiting_auth"
	StateJoining      = "joining"
	StateJoined       = "joined"
	StateFailed       = "failed"
)

// Group categories offered by the create form
const (
	CategoryGeneral    = "Genel Yaşam"
	CategoryRestaurant = "Cafe / Restaurant"
	CategoryTravel     = "Seyahat / Konaklama"
)

// Backend request types

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,numeric,len=11"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries the Google Identity credential (an ID token).
type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,oneof='Genel Yaşam' 'Cafe / Restaurant' 'Seyahat / Konaklama'"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

type JoinGroupRequest struct {
	Code string `json:"code"`
}

// Backend response types

type User struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	BonusPoints int    `json:"bonusPoints"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// DisplayName is what the cart uses as the member label.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return "Kullanıcı"
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

type GroupSummary struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Code          string    `json:"code,omitempty"`
	CodeFormatted string    `json:"code_formatted,omitempty"`
	QRCode        string    `json:"qr_code,omitempty"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RawCode returns whichever code field the backend filled in.
func (g GroupSummary) RawCode() string {
	switch {
	case g.Code != "":
		return g.Code
	case g.QRCode != "":
		return g.QRCode
	default:
		return g.CodeFormatted
	}
}

type Member struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Order struct {
	ID          int       `json:"id"`
	Restaurant  string    `json:"restaurant"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type Group struct {
	GroupSummary
	Creator *Member  `json:"creator,omitempty"`
	Members []Member `json:"members"`
	Orders  []Order  `json:"orders"`
}

type CreateGroupResponse struct {
	Success bool         `json:"success"`
	Group   GroupSummary `json:"group"`
	Message string       `json:"message,omitempty"`
}

// JoinGroupResponse covers both shapes the backend answers with: a bare
// group object, or an envelope with success/message/error.
type JoinGroupResponse struct {
	Success bool          `json:"success"`
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Group   *GroupSummary `json:"group,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Gateway response types

type JoinResponse struct {
	State       string        `json:"state"`
	Code        string        `json:"code,omitempty"`
	CodeDisplay string        `json:"code_display,omitempty"`
	Source      string        `json:"source,omitempty"`
	GroupName   string        `json:"group_name,omitempty"`
	Legacy      bool          `json:"legacy,omitempty"`
	Pending     bool          `json:"pending"`
	Message     string        `json:"message,omitempty"`
	Group       *GroupSummary `json:"group,omitempty"`
}

type CodeInfo struct {
	Input   string `json:"input"`
	State   string `json:"state"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
	Legacy  bool   `json:"legacy"`
}

type ShareInfo struct {
	Code        string `json:"code"`
	CodeDisplay string `json:"code_display"`
	ShareURL    string `json:"share_url"`
	QRPayload   string `json:"qr_payload"`
	QRImageURL  string `json:"qr_image_url"`
}

type GatewayGroup struct {
	Group Group     `json:"group"`
	Share ShareInfo `json:"share"`
}

type GatewayGroupList struct {
	Groups []GatewayGroupSummary `json:"groups"`
}

type GatewayGroupSummary struct {
	GroupSummary
	CodeDisplay string `json:"code_display"`
}

type ScanRequest struct {
	Payload string `json:"payload"`
}

type ManualJoinRequest struct {
	Code string `json:"code"`
}

type ClassifyRequest struct {
	Code string `json:"code"`
}

type SessionResponse struct {
	User     User          `json:"user"`
	Resumed  *JoinResponse `json:"resumed,omitempty"`
	LoggedIn bool          `json:"logged_in"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
