// Package shop defines the catalogue entities and how each one is shown
// in a table and edited in a form.
package shop

// Meta holds the columns every entity carries.
type Meta struct {
	ID         string    `db:"id" json:"id"`
	DeleteFlag bool      `db:"delete_flag" json:"delete_flag"`
	CreatedAt  Timestamp `db:"created_at" json:"created_at"`
	UpdatedAt  Timestamp `db:"updated_at" json:"updated_at"`
}

// Active reports whether the record is not deactivated.
func (m Meta) Active() bool {
	return !m.DeleteFlag
}

// Key returns the record id.
func (m Meta) Key() string {
	return m.ID
}

func (m Meta) field(name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "delete_flag":
		return m.DeleteFlag, true
	case "active":
		return !m.DeleteFlag, true
	case "created_at":
		return m.CreatedAt.Time, true
	case "updated_at":
		return m.UpdatedAt.Time, true
	}
	return nil, false
}

type Category struct {
	Meta
	Name     string  `db:"category_name" json:"category_name"`
	ParentID *string `db:"parent_category_id" json:"parent_category_id"`
}

func (c Category) Field(name string) any {
	switch name {
	case "category_name":
		return c.Name
	case "parent_category_id":
		return c.ParentID
	}
	v, _ := c.Meta.field(name)
	return v
}

type Product struct {
	Meta
	CategoryID  *string `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	Image       *string `db:"product_image" json:"product_image"`
}

func (p Product) Field(name string) any {
	switch name {
	case "category_id":
		return p.CategoryID
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "product_image":
		return p.Image
	}
	v, _ := p.Meta.field(name)
	return v
}

type User struct {
	Meta
	Username     string  `db:"username" json:"username"`
	Email        string  `db:"email_address" json:"email_address"`
	Phone        *string `db:"phone_number" json:"phone_number"`
	IsMember     bool    `db:"is_member" json:"is_member"`
	MembershipID *string `db:"membership_id" json:"membership_id"`
}

func (u User) Field(name string) any {
	switch name {
	case "username":
		return u.Username
	case "email_address":
		return u.Email
	case "phone_number":
		return u.Phone
	case "is_member":
		return u.IsMember
	case "membership_id":
		return u.MembershipID
	}
	v, _ := u.Meta.field(name)
	return v
}

type Membership struct {
	Meta
	Name string `db:"name" json:"name"`
}

func (m Membership) Field(name string) any {
	if name == "name" {
		return m.Name
	}
	v, _ := m.Meta.field(name)
	return v
}

// Order statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type Order struct {
	Meta
	UserID         string    `db:"user_id" json:"user_id"`
	OrderDate      Timestamp `db:"order_date" json:"order_date"`
	ShippingMethod *string   `db:"shipping_method" json:"shipping_method"`
	Total          float64   `db:"order_total" json:"order_total"`
	Status         *string   `db:"order_status" json:"order_status"`
}

func (o Order) Field(name string) any {
	switch name {
	case "user_id":
		return o.UserID
	case "order_date":
		return o.OrderDate.Time
	case "shipping_method":
		return o.ShippingMethod
	case "order_total":
		return o.Total
	case "order_status":
		return o.Status
	}
	v, _ := o.Meta.field(name)
	return v
}

type Promotion struct {
	Meta
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	DiscountRate float64 `db:"discount_rate" json:"discount_rate"`
	StartDate    string  `db:"start_date" json:"start_date"`
	EndDate      string  `db:"end_date" json:"end_date"`
}

func (p Promotion) Field(name string) any {
	switch name {
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "discount_rate":
		return p.DiscountRate
	case "start_date":
		return p.StartDate
	case "end_date":
		return p.EndDate
	}
	v, _ := p.Meta.field(name)
	return v
}

type ShippingMethod struct {
	Meta
	Name  string  `db:"name" json:"name"`
	Price float64 `db:"price" json:"price"`
}

func (s ShippingMethod) Field(name string) any {
	switch name {
	case "name":
		return s.Name
	case "price":
		return s.Price
	}
	v, _ := s.Meta.field(name)
	return v
}

type Review struct {
	Meta
	UserID           string  `db:"user_id" json:"user_id"`
	OrderedProductID *string `db:"ordered_product_id" json:"ordered_product_id"`
	Rating           int64   `db:"rating_value" json:"rating_value"`
	Comment          *string `db:"comment" json:"comment"`
}

func (r Review) Field(name string) any {
	switch name {
	case "user_id":
		return r.UserID
	case "ordered_product_id":
		return r.OrderedProductID
	case "rating_value":
		return r.Rating
	case "comment":
		return r.Comment
	}
	v, _ := r.Meta.field(name)
	return v
}

// Settings is the single row of site-wide settings.
type Settings struct {
	SiteName       string    `db:"site_name" json:"site_name"`
	LogoURL        *string   `db:"logo_url" json:"logo_url"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color"`
	ContactEmail   string    `db:"contact_email" json:"contact_email"`
	CurrencySymbol string    `db:"currency_symbol" json:"currency_symbol"`
	TaxRate        float64   `db:"tax_rate" json:"tax_rate"`
	UpdatedAt      Timestamp `db:"updated_at" json:"updated_at"`
}

func (s Settings) Field(name string) any {
	switch name {
	case "site_name":
		return s.SiteName
	case "logo_url":
		return s.LogoURL
	case "primary_color":
		return s.PrimaryColor
	case "contact_email":
		return s.ContactEmail
	case "currency_symbol":
		return s.CurrencySymbol
	case "tax_rate":
		return s.TaxRate
	case "updated_at":
		return s.UpdatedAt.Time
	}
	return nil
}

// DefaultSettings are used until settings are saved.
func DefaultSettings() Settings {
	return Settings{
		SiteName:       "My E-commerce Store",
		PrimaryColor:   "#3B82F6",
		ContactEmail:   "contact@example.com",
		CurrencySymbol: "$",
		TaxRate:        7.5,
	}
}
