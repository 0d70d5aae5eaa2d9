package model

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOptionalString(t *testing.T) {
	Convey("Blank strings become null", t, func() {
		So(OptionalString("  "), ShouldBeNil)
		So(*OptionalString(" $10k "), ShouldEqual, "$10k")
		So(Deref(nil), ShouldEqual, "")
		So(Deref(OptionalString("x")), ShouldEqual, "x")
	})

	Convey("A submission without budget encodes budget as null", t, func() {
		b, err := json.Marshal(ContactSubmission{Name: "Ada", Email: "a@b.co", Message: "hello world"})
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, `"budget":null`)
		So(string(b), ShouldNotContainSubstring, `"id"`)
		So(string(b), ShouldNotContainSubstring, `"created_at"`)
	})
}

func TestCategories(t *testing.T) {
	Convey("Given posts in several categories", t, func() {
		posts := []BlogPost{
			{Slug: "a", Category: "Branding"},
			{Slug: "b", Category: "SEO"},
			{Slug: "c", Category: "Branding"},
			{Slug: "d"},
		}

		Convey("Filtering keeps order and matches exactly", func() {
			got := FilterCategory(posts, "Branding")
			So(len(got), ShouldEqual, 2)
			So(got[1].Slug, ShouldEqual, "c")
			So(len(FilterCategory(posts, "All")), ShouldEqual, 4)
			So(len(FilterCategory(posts, "")), ShouldEqual, 4)
			So(FilterCategory(posts, "branding"), ShouldBeEmpty)
		})

		Convey("Categories are distinct in first-seen order", func() {
			So(Categories(posts), ShouldResemble, []string{"Branding", "SEO"})
		})
	})
}
