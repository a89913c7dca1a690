package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSaleMail_CompletedAuction(t *testing.T) {
	m := mail{
		ID:      "mail-42",
		Subject: "Auction Sale Complete",
		Body:    "Your auction of Heavy Harvester has been sold to Kaylenn for 125000 credits.",
		SentAt:  time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC),
	}

	record, ok := parseSaleMail(m)
	require.True(t, ok)

	assert.Equal(t, "mail-42", record.MailID)
	assert.Equal(t, "Heavy Harvester", record.ItemName)
	assert.Equal(t, "Kaylenn", record.Buyer)
	assert.Equal(t, int64(125000), record.Credits)
	assert.True(t, record.SoldAt.Equal(m.SentAt))
}

func TestParseSaleMail_NonSaleMailSkipped(t *testing.T) {
	m := mail{
		ID:      "mail-43",
		Subject: "Auction Outbid",
		Body:    "You have been outbid on Heavy Harvester.",
	}

	_, ok := parseSaleMail(m)
	assert.False(t, ok)
}

func TestParseSaleMail_MissingIDSkipped(t *testing.T) {
	m := mail{
		Body: "Your auction of Widget has been sold to Bob for 10 credits.",
	}

	_, ok := parseSaleMail(m)
	assert.False(t, ok)
}

func TestParseSaleMail_ItemNamesWithExtraWords(t *testing.T) {
	m := mail{
		ID:   "mail-44",
		Body: "Your auction of Vibro Axe (Exceptional) has been sold to Ran'del for 9000 credits.",
	}

	record, ok := parseSaleMail(m)
	require.True(t, ok)
	assert.Equal(t, "Vibro Axe (Exceptional)", record.ItemName)
	assert.Equal(t, "Ran'del", record.Buyer)
}
