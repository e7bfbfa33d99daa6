package instagram

// LoginURL is the Instagram login page.
const LoginURL = "https://www.instagram.com/accounts/login/"

// loginPathMarker appears in the URL while the login form is showing.
const loginPathMarker = "accounts/login"

const (
	selUsername    = `input[name="username"]`
	selPassword    = `input[name="password"]`
	selExploreLink = `a[href*="/explore/"]`
	selMain        = "main"
	selCommentBox  = "textarea[aria-label='Add a comment…']"
)

// PostSelectors locate post links on a profile page, most specific first.
// Instagram's markup varies by layout and A/B bucket.
var PostSelectors = []string{
	"article a[href*='/p/']",
	"main section a[href*='/p/']",
	"main div[role='presentation'] a[href*='/p/']",
}

// scrollScript scrolls the window down by %d pixels.
const scrollScript = "window.scrollBy(0, %d); true"

// dismissScript clicks every "Not now" button (save login info, notifications)
// and returns how many it clicked.
const dismissScript = `(() => {
  let clicked = 0;
  for (const el of document.querySelectorAll('button, div[role="button"]')) {
    const label = (el.textContent || '').trim().toLowerCase();
    if (label === 'not now') {
      el.click();
      clicked++;
    }
  }
  return clicked;
})()`
