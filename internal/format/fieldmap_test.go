package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhinton/keepassxc/internal/models"
)

func TestApplyFieldTable(t *testing.T) {
	table := []FieldMapping{
		{Source: "cardholderName", Key: "card_cardholderName"},
		{Source: "code", Key: "card_code", Protected: true},
		{Source: "brand", Key: "card_brand"},
	}
	values := map[string]string{
		"cardholderName": "Jane Doe",
		"code":           "123",
	}

	e := models.NewEntry()
	ApplyFieldTable(e, table, func(s string) string { return values[s] })

	assert.Equal(t, "Jane Doe", e.Attribute("card_cardholderName"))
	assert.Equal(t, "123", e.Attribute("card_code"))
	assert.True(t, e.Attributes().IsProtected("card_code"))
	assert.False(t, e.Attributes().Contains("card_brand"), "empty source values are skipped")
}

func TestSectionKey(t *testing.T) {
	assert.Equal(t, "Contact_phone", SectionKey("Contact", "phone"))
	assert.Equal(t, "phone", SectionKey("", "phone"))
}

func TestURLList(t *testing.T) {
	e := models.NewEntry()
	var urls URLList

	urls.Add(e, "")
	urls.Add(e, "https://first.example.com")
	urls.Add(e, "https://second.example.com")
	urls.Add(e, "https://first.example.com") // duplicate of the primary
	urls.Add(e, "https://third.example.com")

	assert.Equal(t, "https://first.example.com", e.URL)
	assert.Equal(t, "https://second.example.com", e.Attribute("KP2A_URL_1"))
	assert.Equal(t, "https://third.example.com", e.Attribute("KP2A_URL_2"))
	assert.False(t, e.Attributes().Contains("KP2A_URL_3"))
}

func TestSetEntryTotp(t *testing.T) {
	e := models.NewEntry()

	SetEntryTotp(e, "")
	assert.False(t, e.HasTotp())

	SetEntryTotp(e, "otpauth://totp/a?secret=AAA")
	require.True(t, e.HasTotp())
	assert.Equal(t, "AAA", e.TotpSettings().Key)

	SetEntryTotp(e, "BBB")
	assert.Equal(t, "AAA", e.TotpSettings().Key)
	assert.Equal(t, "BBB", e.Attribute("otp_1"))
}
