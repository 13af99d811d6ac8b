package forms

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = errors.New("aborted")

// Prompter asks the user for values
type Prompter interface {
	Input(label, def string, check func(string) error) (string, error)
	Secret(label string) (string, error)
	Select(label string, items []string, cursor int) (int, error)
	Confirm(label string) (bool, error)
}

// Terminal prompts on a terminal with promptui
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// Input asks for a line of text
func (t Terminal) Input(label, def string, check func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: def != "",
		Validate:  check,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	v, err := p.Run()
	if err != nil {
		return "", promptErr(err)
	}
	return strings.TrimSpace(v), nil
}

// Secret asks for a value without echoing it
func (t Terminal) Secret(label string) (string, error) {
	p := promptui.Prompt{
		Label:  label,
		Mask:   '*',
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}
	v, err := p.Run()
	if err != nil {
		return "", promptErr(err)
	}
	return v, nil
}

// Select asks the user to pick one item
func (t Terminal) Select(label string, items []string, cursor int) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	p := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
		CursorPos: cursor,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	i, _, err := p.Run()
	if err != nil {
		return -1, promptErr(err)
	}
	return i, nil
}

// Confirm asks a yes/no question. Anything but yes is a no.
func (t Terminal) Confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptErr(err)
	}
	return true, nil
}

// Scripted answers prompts from a fixed list. An empty answer takes the default.
type Scripted struct {
	Answers []string
	Asked   []string
}

func (s *Scripted) next(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	if len(s.Answers) == 0 {
		return "", ErrAborted
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return a, nil
}

func (s *Scripted) Input(label, def string, check func(string) error) (string, error) {
	a, err := s.next(label)
	if err != nil {
		return "", err
	}
	if a == "" {
		a = def
	}
	if check != nil {
		if err := check(a); err != nil {
			return "", fmt.Errorf("%s: %w", label, err)
		}
	}
	return a, nil
}

func (s *Scripted) Secret(label string) (string, error) {
	return s.next(label)
}

func (s *Scripted) Select(label string, items []string, cursor int) (int, error) {
	a, err := s.next(label)
	if err != nil {
		return -1, err
	}
	if a == "" {
		return cursor, nil
	}
	for i, it := range items {
		if it == a {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: no item %q", label, a)
}

func (s *Scripted) Confirm(label string) (bool, error) {
	a, err := s.next(label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(a, "y") || strings.EqualFold(a, "yes"), nil
}

func numberCheck(rule string) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.New("enter a number")
		}
		return ValidateVar("value", v, rule)
	}
}

func textCheck(rule string) func(string) error {
	return func(s string) error {
		return ValidateVar("value", strings.TrimSpace(s), rule)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

// FillProduct walks through the product form, starting from current
func FillProduct(p Prompter, current ProductForm, categories []client.Category) (ProductForm, error) {
	f := current
	var err error

	if f.SnackName, err = p.Input("Name", f.SnackName, textCheck("required,max=200")); err != nil {
		return f, err
	}
	if f.Description, err = p.Input("Description", f.Description, textCheck("required,max=2000")); err != nil {
		return f, err
	}

	price, err := p.Input("Price (đ)", formatNumber(f.Price), numberCheck("gt=0"))
	if err != nil {
		return f, err
	}
	f.Price = parseNumber(price)

	stock, err := p.Input("Stock", strconv.Itoa(f.Stock), numberCheck("gte=0"))
	if err != nil {
		return f, err
	}
	f.Stock = int(parseNumber(stock))

	if len(categories) > 0 {
		names := make([]string, len(categories))
		cursor := 0
		for i, c := range categories {
			names[i] = c.Name
			if c.ID == f.CategoryID {
				cursor = i
			}
		}
		i, err := p.Select("Category", names, cursor)
		if err != nil {
			return f, err
		}
		f.CategoryID = categories[i].ID
	}

	discount, err := p.Input("Discount (%)", formatNumber(f.Discount), numberCheck("gte=0,lte=100"))
	if err != nil {
		return f, err
	}
	f.Discount = parseNumber(discount)

	images, err := p.Input("Image URLs (comma separated)", strings.Join(f.Images, ", "), textCheck("required"))
	if err != nil {
		return f, err
	}
	f.Images = SplitList(images)

	return f, Validate(&f)
}

// FillCoupon walks through the coupon form, starting from current
func FillCoupon(p Prompter, current CouponForm) (CouponForm, error) {
	f := current
	var err error

	if f.Code, err = p.Input("Code", f.Code, textCheck("required,min=3,max=20,alphanum")); err != nil {
		return f, err
	}

	types := []string{client.DiscountPercentage, client.DiscountFixed}
	cursor := 0
	if f.DiscountType == client.DiscountFixed {
		cursor = 1
	}
	i, err := p.Select("Discount type", types, cursor)
	if err != nil {
		return f, err
	}
	f.DiscountType = types[i]

	rule := "gt=0"
	if f.DiscountType == client.DiscountPercentage {
		rule = "gt=0,lte=100"
	}
	value, err := p.Input("Discount value", formatNumber(f.DiscountValue), numberCheck(rule))
	if err != nil {
		return f, err
	}
	f.DiscountValue = parseNumber(value)

	minPurchase, err := p.Input("Minimum purchase (đ)", formatNumber(f.MinPurchase), numberCheck("gte=0"))
	if err != nil {
		return f, err
	}
	f.MinPurchase = parseNumber(minPurchase)

	if f.StartDate, err = promptDate(p, "Start date (YYYY-MM-DD)", f.StartDate); err != nil {
		return f, err
	}
	if f.EndDate, err = promptDate(p, "End date (YYYY-MM-DD)", f.EndDate); err != nil {
		return f, err
	}
	// The end date covers the whole day
	f.EndDate = f.EndDate.Add(24*time.Hour - time.Second)

	if f.Description, err = p.Input("Description", f.Description, textCheck("max=500")); err != nil {
		return f, err
	}

	if f.IsActive, err = p.Confirm("Active"); err != nil {
		return f, err
	}

	return f, Validate(&f)
}

func promptDate(p Prompter, label string, current time.Time) (time.Time, error) {
	def := ""
	if !current.IsZero() {
		def = current.Local().Format(DateLayout)
	}
	v, err := p.Input(label, def, func(s string) error {
		_, err := ParseDate(s)
		return err
	})
	if err != nil {
		return time.Time{}, err
	}
	return ParseDate(v)
}

// DateLayout is how dates are typed
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD day in local time
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConfirmDelete asks before deleting something, unless yes is already set
func ConfirmDelete(p Prompter, what string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	return p.Confirm(fmt.Sprintf("Delete %s", what))
}
