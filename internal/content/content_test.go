package content_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goldedge/rewards/internal/content"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultBanks(t *testing.T) {
	Convey("Given the embedded banks", t, func() {
		b := content.Default()

		Convey("Then titles, features and descriptions are present", func() {
			So(len(b.Titles), ShouldEqual, 8)
			So(len(b.Features), ShouldEqual, 5)
			So(b.Titles[0], ShouldEqual, "Everett Success Stories")
			So(b.Features[1], ShouldResemble, []string{"Expert Interviews", "Real Stories", "Actionable Tips"})
			So(b.Descriptions.Video, ShouldContainSubstring, "%s")
			So(b.Descriptions.Ad, ShouldNotBeBlank)
			So(b.Descriptions.Survey, ShouldNotBeBlank)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a content override file", t, func() {
		dir := t.TempDir()

		Convey("When the file has titles and features only", func() {
			path := filepath.Join(dir, "banks.toml")
			So(os.WriteFile(path, []byte(`
titles = ["Only Title"]
features = [["One"]]
`), 0o600), ShouldBeNil)

			b, err := content.Load(path)

			Convey("Then descriptions fall back to the defaults", func() {
				So(err, ShouldBeNil)
				So(b.Titles, ShouldResemble, []string{"Only Title"})
				So(b.Descriptions.Ad, ShouldEqual, content.Default().Descriptions.Ad)
			})
		})

		Convey("When the file has no titles", func() {
			path := filepath.Join(dir, "empty.toml")
			So(os.WriteFile(path, []byte(`features = [["x"]]`), 0o600), ShouldBeNil)

			_, err := content.Load(path)

			Convey("Then the banks are rejected", func() {
				So(errors.Is(err, content.ErrEmptyBanks), ShouldBeTrue)
			})
		})

		Convey("When the file is not TOML", func() {
			path := filepath.Join(dir, "bad.toml")
			So(os.WriteFile(path, []byte(`titles = [`), 0o600), ShouldBeNil)

			_, err := content.Load(path)

			Convey("Then a decode error is returned", func() {
				So(errors.Is(err, content.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the path is empty", func() {
			b, err := content.Load("")

			Convey("Then the defaults are used", func() {
				So(err, ShouldBeNil)
				So(len(b.Titles), ShouldEqual, 8)
			})
		})
	})
}
