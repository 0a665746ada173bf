package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestaurantInfoFromHTML(t *testing.T) {
	html := `<html><head><title>Luigi's Trattoria | Official Site</title></head>
<body>
<h1>Benvenuti</h1>
<a href="tel:+15551234567">Call us</a>
<address>12 Mulberry St, New York, NY 10013</address>
</body></html>`

	info := restaurantInfoFromHTML(html, "https://luigis.test/menu")

	assert.Equal(t, "Luigi's Trattoria", info.Name)
	assert.Equal(t, "https://luigis.test", info.Website)
	assert.Equal(t, "+15551234567", info.Phone)
	assert.Equal(t, "12 Mulberry St, New York, NY 10013", info.Address)
}

func TestRestaurantInfoFromHTML_FallbacksAndLimits(t *testing.T) {
	html := `<html><head><title></title></head><body>
<h1>The Corner Cafe</h1>
<footer>Reservations: (555) 123-4567</footer>
</body></html>`

	info := restaurantInfoFromHTML(html, "https://corner.test/")

	assert.Equal(t, "The Corner Cafe", info.Name)
	assert.Equal(t, "(555) 123-4567", info.Phone)
	assert.Empty(t, info.Address)
}

func TestRestaurantInfoFromHTML_Unparseable(t *testing.T) {
	info := restaurantInfoFromHTML("", "https://x.test/menu")
	assert.Equal(t, "https://x.test", info.Website)
	assert.Empty(t, info.Name)
}
