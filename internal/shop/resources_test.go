package shop

import (
	"testing"

	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestEditValuesValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema *form.Schema
		values form.Values
	}{
		{"category", Categories().Schema, Categories().Values(Category{Name: "Books"})},
		{"product", Products().Schema, Products().Values(Product{Name: "Lamp", Description: ptr("Desk lamp")})},
		{"user", Users().Schema, Users().Values(User{Username: "john_doe", Email: "john@example.com", IsMember: true})},
		{"membership", Memberships().Schema, Memberships().Values(Membership{Name: "Gold"})},
		{"promotion", Promotions().Schema, Promotions().Values(Promotion{
			Name: "Summer", Description: ptr("Sale"), DiscountRate: 12.5, StartDate: "2024-06-01", EndDate: "2024-06-30",
		})},
		{"shipping", Shipping(DefaultFormat()).Schema, Shipping(DefaultFormat()).Values(ShippingMethod{Name: "Express", Price: 9.5})},
		{"review", Reviews().Schema, Reviews().Values(Review{UserID: "u1", OrderedProductID: ptr("p1"), Rating: 4})},
		{"settings", SettingsSchema(), SettingsValues(DefaultSettings())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.schema.Validate(tt.values)
			assert.NoError(t, err)
		})
	}
}

func TestOrdersAreReadOnly(t *testing.T) {
	r := Orders(DefaultFormat())
	assert.True(t, r.ReadOnly)
	assert.Nil(t, r.Schema)
	assert.Equal(t, datatable.ClientMode, r.Mode)
}

func TestServerModeResources(t *testing.T) {
	assert.Equal(t, datatable.ServerMode, Promotions().Mode)
	assert.Equal(t, datatable.ServerMode, Shipping(DefaultFormat()).Mode)
	assert.Equal(t, datatable.ServerMode, Reviews().Mode)
	assert.Equal(t, datatable.ClientMode, Products().Mode)
}

func TestColumnRendering(t *testing.T) {
	users := Users()
	u := User{Username: "jane", Email: "jane@example.com"}
	cells := make([]string, len(users.Columns))
	for i, c := range users.Columns {
		cells[i] = c.Cell(u).Text
	}
	assert.Equal(t, []string{"jane", "jane@example.com", "N/A", "Non-member", "Active"}, cells)

	promo := Promotions().Columns[2].Cell(Promotion{DiscountRate: 15})
	assert.Equal(t, "15%", promo.Text)
}

func TestSettingsValidation(t *testing.T) {
	v := SettingsValues(DefaultSettings())
	v["primary_color"] = "blue"
	v["tax_rate"] = "120"
	_, err := SettingsSchema().Validate(v)
	require.Error(t, err)

	var verrs form.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	msg, ok := verrs.For("primary_color")
	assert.True(t, ok)
	assert.Equal(t, "Must be a valid hex color", msg)
	msg, ok = verrs.For("tax_rate")
	assert.True(t, ok)
	assert.Equal(t, "Tax rate cannot exceed 100%", msg)
}
