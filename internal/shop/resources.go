package shop

import (
	"strconv"

	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/form"
)

// Resource names, also used in access rules.
const (
	ResUsers       = "users"
	ResProducts    = "products"
	ResCategories  = "categories"
	ResMemberships = "memberships"
	ResOrders      = "orders"
	ResPromotions  = "promotions"
	ResShipping    = "shipping"
	ResReviews     = "reviews"
	ResSettings    = "settings"
)

// Names lists the table resources in navigation order.
var Names = []string{
	ResUsers, ResProducts, ResCategories, ResMemberships,
	ResOrders, ResPromotions, ResShipping, ResReviews,
}

// Resource describes how one entity is listed and edited.
type Resource[T datatable.Record] struct {
	Name     string
	Title    string
	Singular string
	Mode     datatable.Mode
	// ReadOnly resources have no form.
	ReadOnly     bool
	Columns      []datatable.Column[T]
	SearchFields []string
	Schema       *form.Schema
	// Values maps a record to form defaults for editing.
	Values func(T) form.Values
}

func key[T datatable.Record](header, name string) datatable.Column[T] {
	return datatable.Column[T]{Header: header, Accessor: datatable.Key[T](name)}
}

func status[T interface {
	datatable.Record
	Active() bool
}]() datatable.Column[T] {
	return datatable.Column[T]{
		Header:   "Status",
		Accessor: datatable.Key[T]("active"),
		Render: func(item T) string {
			if item.Active() {
				return "Active"
			}
			return "Inactive"
		},
	}
}

const nameMin = "Name must be at least 2 characters."

var (
	categorySchema = form.MustSchema(ResCategories,
		form.NewField("category_name", "Name", form.Text).MinLen(2, nameMin),
		form.NewField("parent_category_id", "Parent category", form.Text).Hint("category id"),
	)
	productSchema = form.MustSchema(ResProducts,
		form.NewField("name", "Product name", form.Text).MinLen(2, nameMin),
		form.NewField("description", "Description", form.LongText),
		form.NewField("category_id", "Category", form.Text).Hint("category id"),
		form.NewField("product_image", "Image URL", form.URL).Invalid("Must be a valid URL."),
	)
	userSchema = form.MustSchema(ResUsers,
		form.NewField("username", "Username", form.Text).MinLen(3, "Username must be at least 3 characters."),
		form.NewField("email_address", "Email", form.Email).
			Require("Email is required.").
			Invalid("Must be a valid email address."),
		form.NewField("phone_number", "Phone", form.Text),
		form.NewField("is_member", "Member", form.Bool),
		form.NewField("membership_id", "Membership", form.Text).Hint("membership id"),
	)
	membershipSchema = form.MustSchema(ResMemberships,
		form.NewField("name", "Name", form.Text).MinLen(2, nameMin),
	)
	promotionSchema = form.MustSchema(ResPromotions,
		form.NewField("name", "Name", form.Text).MinLen(2, nameMin),
		form.NewField("description", "Description", form.LongText).MinLen(2, "Description must be at least 2 characters."),
		form.NewField("discount_rate", "Discount rate", form.Number).
			Require("Discount rate is required.").
			AtLeast(0, "Discount rate must be at least 0.").
			AtMost(100, "Discount rate must be at most 100."),
		form.NewField("start_date", "Start date", form.Date).
			Require("Start date is required.").
			Invalid("Start date must be a date (YYYY-MM-DD).").
			Hint("YYYY-MM-DD"),
		form.NewField("end_date", "End date", form.Date).
			Require("End date is required.").
			Invalid("End date must be a date (YYYY-MM-DD).").
			Hint("YYYY-MM-DD"),
	)
	shippingSchema = form.MustSchema(ResShipping,
		form.NewField("name", "Name", form.Text).MinLen(2, nameMin),
		form.NewField("price", "Price", form.Number).
			Require("Price is required.").
			AtLeast(0, "Price must be at least 0."),
	)
	reviewSchema = form.MustSchema(ResReviews,
		form.NewField("user_id", "User ID", form.Text).Require("User ID is required."),
		form.NewField("ordered_product_id", "Product ID", form.Text).Require("Product ID is required."),
		form.NewField("rating_value", "Rating", form.Integer).
			Require("Rating is required.").
			AtLeast(1, "Rating must be at least 1.").
			AtMost(5, "Rating must be at most 5.").
			Invalid("Rating must be a whole number."),
		form.NewField("comment", "Comment", form.LongText),
	)
	settingsSchema = form.MustSchema(ResSettings,
		form.NewField("site_name", "Site name", form.Text).Require("Site name is required"),
		form.NewField("logo_url", "Logo URL", form.Text),
		form.NewField("primary_color", "Primary color", form.Color).
			Require("Must be a valid hex color").
			Match(`^#[0-9A-Fa-f]{6}$`, "Must be a valid hex color").
			Hint("#3B82F6"),
		form.NewField("contact_email", "Contact email", form.Email).
			Require("Must be a valid email address").
			Invalid("Must be a valid email address"),
		form.NewField("currency_symbol", "Currency symbol", form.Text).Require("Currency symbol is required"),
		form.NewField("tax_rate", "Tax rate (%)", form.Number).
			Require("Tax rate is required").
			AtLeast(0, "Tax rate must be positive").
			AtMost(100, "Tax rate cannot exceed 100%"),
	)
)

// Categories lists product categories.
func Categories() Resource[Category] {
	return Resource[Category]{
		Name: ResCategories, Title: "Categories", Singular: "Category",
		Columns: []datatable.Column[Category]{
			key[Category]("Name", "category_name"),
			key[Category]("Parent Category", "parent_category_id"),
			status[Category](),
		},
		SearchFields: []string{"category_name"},
		Schema:       categorySchema,
		Values: func(c Category) form.Values {
			return form.Values{"category_name": c.Name, "parent_category_id": deref(c.ParentID)}
		},
	}
}

func Products() Resource[Product] {
	return Resource[Product]{
		Name: ResProducts, Title: "Products", Singular: "Product",
		Columns: []datatable.Column[Product]{
			key[Product]("Name", "name"),
			key[Product]("Description", "description"),
			key[Product]("Category", "category_id"),
			status[Product](),
		},
		SearchFields: []string{"name", "description"},
		Schema:       productSchema,
		Values: func(p Product) form.Values {
			return form.Values{
				"name":          p.Name,
				"description":   deref(p.Description),
				"category_id":   deref(p.CategoryID),
				"product_image": deref(p.Image),
			}
		},
	}
}

func Users() Resource[User] {
	return Resource[User]{
		Name: ResUsers, Title: "Users", Singular: "User",
		Columns: []datatable.Column[User]{
			key[User]("Username", "username"),
			key[User]("Email", "email_address"),
			{Header: "Phone", Accessor: datatable.Key[User]("phone_number"), Render: func(u User) string {
				if u.Phone == nil || *u.Phone == "" {
					return "N/A"
				}
				return *u.Phone
			}},
			{Header: "Membership", Accessor: datatable.Key[User]("is_member"), Render: func(u User) string {
				if u.IsMember {
					return "Member"
				}
				return "Non-member"
			}},
			status[User](),
		},
		SearchFields: []string{"username", "email_address", "phone_number"},
		Schema:       userSchema,
		Values: func(u User) form.Values {
			return form.Values{
				"username":      u.Username,
				"email_address": u.Email,
				"phone_number":  deref(u.Phone),
				"is_member":     strconv.FormatBool(u.IsMember),
				"membership_id": deref(u.MembershipID),
			}
		},
	}
}

func Memberships() Resource[Membership] {
	return Resource[Membership]{
		Name: ResMemberships, Title: "Memberships", Singular: "Membership",
		Columns: []datatable.Column[Membership]{
			key[Membership]("Name", "name"),
			key[Membership]("Created", "created_at"),
			status[Membership](),
		},
		SearchFields: []string{"name"},
		Schema:       membershipSchema,
		Values: func(m Membership) form.Values {
			return form.Values{"name": m.Name}
		},
	}
}

// Orders is read-only: orders are placed by customers, not edited here.
func Orders(f Format) Resource[Order] {
	return Resource[Order]{
		Name: ResOrders, Title: "Orders", Singular: "Order",
		ReadOnly: true,
		Columns: []datatable.Column[Order]{
			{Header: "Order ID", Accessor: datatable.Key[Order]("id"), Render: func(o Order) string {
				if len(o.ID) > 8 {
					return o.ID[:8]
				}
				return o.ID
			}},
			{Header: "Date", Accessor: datatable.Key[Order]("order_date"), Render: func(o Order) string {
				return o.OrderDate.Format("2006-01-02") + " (" + f.Ago(o.OrderDate.Time) + ")"
			}},
			key[Order]("Customer", "user_id"),
			{Header: "Amount", Accessor: datatable.Key[Order]("order_total"), Render: func(o Order) string {
				return f.Money(o.Total)
			}},
			key[Order]("Status", "order_status"),
		},
		SearchFields: []string{"id", "user_id", "order_status"},
	}
}

func Promotions() Resource[Promotion] {
	return Resource[Promotion]{
		Name: ResPromotions, Title: "Promotions", Singular: "Promotion",
		Mode: datatable.ServerMode,
		Columns: []datatable.Column[Promotion]{
			key[Promotion]("Name", "name"),
			key[Promotion]("Description", "description"),
			{Header: "Discount Rate", Accessor: datatable.Key[Promotion]("discount_rate"), Render: func(p Promotion) string {
				return Percent(p.DiscountRate)
			}},
			key[Promotion]("Start Date", "start_date"),
			key[Promotion]("End Date", "end_date"),
		},
		SearchFields: []string{"name", "description"},
		Schema:       promotionSchema,
		Values: func(p Promotion) form.Values {
			return form.Values{
				"name":          p.Name,
				"description":   deref(p.Description),
				"discount_rate": num(p.DiscountRate),
				"start_date":    p.StartDate,
				"end_date":      p.EndDate,
			}
		},
	}
}

func Shipping(f Format) Resource[ShippingMethod] {
	return Resource[ShippingMethod]{
		Name: ResShipping, Title: "Shipping Methods", Singular: "Shipping Method",
		Mode: datatable.ServerMode,
		Columns: []datatable.Column[ShippingMethod]{
			key[ShippingMethod]("Name", "name"),
			{Header: "Price", Accessor: datatable.Key[ShippingMethod]("price"), Render: func(s ShippingMethod) string {
				return f.Money(s.Price)
			}},
		},
		SearchFields: []string{"name"},
		Schema:       shippingSchema,
		Values: func(s ShippingMethod) form.Values {
			return form.Values{"name": s.Name, "price": num(s.Price)}
		},
	}
}

func Reviews() Resource[Review] {
	return Resource[Review]{
		Name: ResReviews, Title: "Reviews", Singular: "Review",
		Mode: datatable.ServerMode,
		Columns: []datatable.Column[Review]{
			key[Review]("User ID", "user_id"),
			key[Review]("Product ID", "ordered_product_id"),
			{Header: "Rating", Accessor: datatable.Key[Review]("rating_value"), Render: func(r Review) string {
				return Stars(r.Rating)
			}},
			key[Review]("Comment", "comment"),
		},
		SearchFields: []string{"user_id", "ordered_product_id", "comment"},
		Schema:       reviewSchema,
		Values: func(r Review) form.Values {
			return form.Values{
				"user_id":            r.UserID,
				"ordered_product_id": deref(r.OrderedProductID),
				"rating_value":       strconv.FormatInt(r.Rating, 10),
				"comment":            deref(r.Comment),
			}
		},
	}
}

// SettingsSchema is the schema of the settings form.
func SettingsSchema() *form.Schema {
	return settingsSchema
}

// SettingsValues maps settings to form values.
func SettingsValues(s Settings) form.Values {
	return form.Values{
		"site_name":       s.SiteName,
		"logo_url":        deref(s.LogoURL),
		"primary_color":   s.PrimaryColor,
		"contact_email":   s.ContactEmail,
		"currency_symbol": s.CurrencySymbol,
		"tax_rate":        num(s.TaxRate),
	}
}
