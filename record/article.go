package record

import "time"

// Article is a news article harvested from a mirror-style site by scraping
// its detail page's structured metadata.
type Article struct {
	URL           string    `json:"url"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	DatePublished time.Time `json:"datePublished"`
	DateModified  time.Time `json:"dateModified"`
	Headline      string    `json:"headline"`
	Description   string    `json:"description"`
	Author        string    `json:"author"`
}

var articleColumns = []string{
	"url",
	"thumbnailUrl",
	"datePublished",
	"dateModified",
	"headline",
	"description",
	"author",
}

// NewArticle builds an Article from a decoded metadata document. The
// supplied url is the identity, whatever URL the document itself carries.
// The document's author must already be projected to a flat string; see
// harvest.ParseArticle. Absent optional fields default to Placeholder.
func NewArticle(url string, doc map[string]any) (Article, error) {
	var (
		a   = Article{URL: url}
		err error
	)

	if a.ThumbnailURL, err = optionalString(doc, "thumbnailUrl", Placeholder); err != nil {
		return Article{}, err
	}
	if a.DatePublished, err = requireTime(doc, "datePublished"); err != nil {
		return Article{}, err
	}
	if a.DateModified, err = requireTime(doc, "dateModified"); err != nil {
		return Article{}, err
	}
	if a.Headline, err = optionalString(doc, "headline", Placeholder); err != nil {
		return Article{}, err
	}
	if a.Description, err = requireString(doc, "description"); err != nil {
		return Article{}, err
	}
	if a.Author, err = optionalString(doc, "author", Placeholder); err != nil {
		return Article{}, err
	}

	return a, nil
}

func (a Article) Key() string { return a.URL }

func (a Article) Published() time.Time { return a.DatePublished }

// Equal reports whether a and other are the same article.
func (a Article) Equal(other Article) bool {
	return a.URL == other.URL
}

func (a Article) Columns() []string { return articleColumns }

func (a Article) Fields() map[string]string {
	return map[string]string{
		"url":           a.URL,
		"thumbnailUrl":  a.ThumbnailURL,
		"datePublished": formatTime(a.DatePublished),
		"dateModified":  formatTime(a.DateModified),
		"headline":      a.Headline,
		"description":   a.Description,
		"author":        a.Author,
	}
}
