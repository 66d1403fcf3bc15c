package collector

import (
	"testing"

	"github.com/mmcdole/gofeed"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Example News</title>
    <link>https://news.example.com</link>
    <item>
      <title>With media</title>
      <link>https://news.example.com/a</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <description><![CDATA[<p>desc <img src="https://img.example.com/inline.jpg"></p>]]></description>
      <media:content url="https://img.example.com/media.jpg" medium="image"/>
      <media:thumbnail url="https://img.example.com/thumb.jpg"/>
    </item>
    <item>
      <title>With group</title>
      <link>https://news.example.com/b</link>
      <media:group>
        <media:content url="https://img.example.com/group.jpg"/>
      </media:group>
    </item>
    <item>
      <title>With enclosure</title>
      <link>https://news.example.com/c</link>
      <enclosure url="https://img.example.com/enc.png" type="image/png" length="10"/>
    </item>
    <item>
      <title>With itunes image</title>
      <link>https://news.example.com/d</link>
      <itunes:image href="https://img.example.com/itunes.jpg"/>
      <enclosure url="https://img.example.com/enc.jpg" type="image/jpeg" length="10"/>
    </item>
  </channel>
</rss>`

func TestConvertFeedExtractsExplicitFields(t *testing.T) {
	parsed, err := gofeed.NewParser().ParseString(sampleRSS)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	feed := convertFeed(parsed)
	if feed.Title != "Example News" {
		t.Fatalf("Title = %q", feed.Title)
	}
	if len(feed.Entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(feed.Entries))
	}

	a := feed.Entries[0]
	if a.Link != "https://news.example.com/a" || a.Published == "" {
		t.Fatalf("unexpected first entry: %+v", a)
	}
	if len(a.MediaContent) == 0 || a.MediaContent[0] != "https://img.example.com/media.jpg" {
		t.Fatalf("media content not extracted: %v", a.MediaContent)
	}
	if len(a.MediaThumbnail) == 0 || a.MediaThumbnail[0] != "https://img.example.com/thumb.jpg" {
		t.Fatalf("media thumbnail not extracted: %v", a.MediaThumbnail)
	}
	if got := ResolveImage(a); got != "https://img.example.com/media.jpg" {
		t.Fatalf("structured media must win over inline img, got %q", got)
	}

	if got := ResolveImage(feed.Entries[1]); got != "https://img.example.com/group.jpg" {
		t.Fatalf("media:group content not resolved, got %q", got)
	}

	c := feed.Entries[2]
	if len(c.Enclosures) != 1 || c.Enclosures[0].Type != "image/png" {
		t.Fatalf("enclosure not extracted: %+v", c.Enclosures)
	}
	if got := ResolveImage(c); got != "https://img.example.com/enc.png" {
		t.Fatalf("ResolveImage(enclosure) = %q", got)
	}

	// itunes:image 不是 media 字段，不能排在 image/* enclosure 之前
	d := feed.Entries[3]
	if len(d.MediaThumbnail) != 0 {
		t.Fatalf("itunes image leaked into thumbnails: %v", d.MediaThumbnail)
	}
	if got := ResolveImage(d); got != "https://img.example.com/enc.jpg" {
		t.Fatalf("ResolveImage(itunes + enclosure) = %q, want enclosure", got)
	}
}
