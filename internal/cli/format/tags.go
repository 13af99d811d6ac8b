package format

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

// Tag colors, matching the web console's tags
var (
	colorGold    = lipgloss.Color("#D4A017")
	colorBlue    = lipgloss.Color("#3B82F6")
	colorCyan    = lipgloss.Color("#06B6D4")
	colorGreen   = lipgloss.Color("#22C55E")
	colorRed     = lipgloss.Color("#F87171")
	colorOrange  = lipgloss.Color("#FB923C")
	colorPurple  = lipgloss.Color("#A855F7")
	colorDefault = lipgloss.Color("#9CA3AF")
)

type tag struct {
	text  string
	color lipgloss.Color
}

var orderTags = map[string]tag{
	client.OrderPending:    {"Pending", colorGold},
	client.OrderProcessing: {"Processing", colorBlue},
	client.OrderShipping:   {"Shipping", colorCyan},
	client.OrderCompleted:  {"Completed", colorGreen},
	client.OrderCancelled:  {"Cancelled", colorRed},
}

var couponTags = map[string]tag{
	"expired":   {"Expired", colorRed},
	"scheduled": {"Scheduled", colorOrange},
	"active":    {"Active", colorGreen},
	"inactive":  {"Inactive", colorDefault},
}

var roleTags = map[string]tag{
	client.RoleAdmin: {"Admin", colorPurple},
	client.RoleUser:  {"User", colorBlue},
}

var userStatusTags = map[string]tag{
	client.UserStatusActive:  {"Active", colorGreen},
	client.UserStatusBlocked: {"Blocked", colorRed},
}

var reviewTags = map[string]tag{
	client.ReviewPending:  {"Pending", colorGold},
	client.ReviewApproved: {"Approved", colorGreen},
	client.ReviewRejected: {"Rejected", colorRed},
}

var paymentTags = map[string]tag{
	client.PaymentPending: {"Unpaid", colorGold},
	client.PaymentPaid:    {"Paid", colorGreen},
}

// Styles renders colored tags. Colors only appear on terminals.
type Styles struct {
	r     *lipgloss.Renderer
	color bool
}

// NewStyles creates styles for out. color=false always renders plain text.
func NewStyles(out io.Writer, color bool) *Styles {
	return &Styles{r: lipgloss.NewRenderer(out), color: color}
}

func (s *Styles) render(tags map[string]tag, value string) string {
	t, ok := tags[value]
	if !ok {
		t = tag{text: value, color: colorDefault}
	}
	if !s.color {
		return t.text
	}
	return s.r.NewStyle().Foreground(t.color).Render(t.text)
}

// OrderStatus renders an order status tag
func (s *Styles) OrderStatus(status string) string { return s.render(orderTags, status) }

// CouponStatus renders a derived coupon status tag
func (s *Styles) CouponStatus(status string) string { return s.render(couponTags, status) }

// Role renders a role tag
func (s *Styles) Role(role string) string { return s.render(roleTags, role) }

// UserStatus renders an account status tag
func (s *Styles) UserStatus(status string) string { return s.render(userStatusTags, status) }

// ReviewStatus renders a review status tag
func (s *Styles) ReviewStatus(status string) string { return s.render(reviewTags, status) }

// PaymentStatus renders a payment status tag
func (s *Styles) PaymentStatus(status string) string { return s.render(paymentTags, status) }

// Title renders a section heading
func (s *Styles) Title(text string) string {
	if !s.color {
		return text
	}
	return s.r.NewStyle().Bold(true).Foreground(colorCyan).Render(text)
}

// Muted renders secondary text
func (s *Styles) Muted(text string) string {
	if !s.color {
		return text
	}
	return s.r.NewStyle().Foreground(colorDefault).Render(text)
}
