package odata

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pshelf/pshelf/internal/feedtest"
	"github.com/pshelf/pshelf/pkg/feed"
)

func galleryFixture(t *testing.T) *feedtest.Server {
	t.Helper()
	return feedtest.NewServer(t,
		feedtest.Package{ID: "Carbon", Version: "1.5.0", Tags: "DSC setup"},
		feedtest.Package{ID: "Carbon", Version: "2.0.0", Tags: "DSC setup"},
		feedtest.Package{ID: "Carbon", Version: "2.2.5", IsLatest: true, Tags: "DSC setup"},
		feedtest.Package{ID: "Carbon", Version: "2.3.0-beta1", Prerelease: true, IsAbsoluteLatest: true, Tags: "DSC setup"},
		feedtest.Package{ID: "PowerShellGet", Version: "2.2.5", IsLatest: true, IsAbsoluteLatest: true, Tags: "PackageManagement Provider"},
		feedtest.Package{ID: "PowerGridGet", Version: "1.0.0", IsLatest: true, IsAbsoluteLatest: true, Tags: "Energy"},
		feedtest.Package{ID: "Pester", Version: "5.5.0", IsLatest: true, IsAbsoluteLatest: true, Tags: "BDD testing"},
	)
}

func TestClientFindExactName(t *testing.T) {
	srv := galleryFixture(t)
	client := testClient(t, srv.URL)

	res, err := client.Find(context.Background(), feed.Query{Name: "Carbon"})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	if got := len(srv.Requests()); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}

	page := res.Pages[0]
	if !strings.Contains(page, "<d:NormalizedVersion>2.2.5</d:NormalizedVersion>") {
		t.Errorf("page should contain the latest stable version:\n%s", page)
	}
	if strings.Contains(page, "2.0.0") || strings.Contains(page, "2.3.0-beta1") {
		t.Errorf("page should only contain the latest stable version:\n%s", page)
	}
}

func TestClientFindExactNamePrerelease(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Name: "Carbon", Prerelease: true})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if !strings.Contains(res.Pages[0], "2.3.0-beta1") {
		t.Errorf("prerelease lookup should return the beta:\n%s", res.Pages[0])
	}
}

func TestClientFindNameIsCaseInsensitive(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Name: "carbon"})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if !strings.Contains(res.Pages[0], "2.2.5") {
		t.Errorf("lowercase name should still match Carbon:\n%s", res.Pages[0])
	}
}

func TestClientFindGlobWithTag(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{
		Name: "Power*Get",
		Tags: []string{"Provider"},
	})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}

	page := res.Pages[0]
	if !strings.Contains(page, "PowerShellGet") {
		t.Errorf("expected PowerShellGet in result:\n%s", page)
	}
	// PowerGridGet matches the name pattern but not the tag.
	if strings.Contains(page, "PowerGridGet") {
		t.Errorf("tag filter should have excluded PowerGridGet:\n%s", page)
	}
}

func TestClientFindAll(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}

	page := res.Pages[0]
	for _, id := range []string{"Carbon", "PowerShellGet", "PowerGridGet", "Pester"} {
		if !strings.Contains(page, ">"+id+"<") {
			t.Errorf("expected %s in the full listing:\n%s", id, page)
		}
	}
	if !strings.Contains(page, "<m:count>4</m:count>") {
		t.Errorf("expected 4 latest-version entries:\n%s", page)
	}
}

func TestClientFindByTag(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Tags: []string{"testing"}})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	page := res.Pages[0]
	if !strings.Contains(page, "Pester") {
		t.Errorf("expected Pester for tag 'testing':\n%s", page)
	}
	if strings.Contains(page, "Carbon") {
		t.Errorf("Carbon does not carry the tag:\n%s", page)
	}
}

func TestClientFindExactVersion(t *testing.T) {
	srv := galleryFixture(t)

	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Name: "Carbon", Version: "2.0.0"})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	if got := len(srv.Requests()); got != 1 {
		t.Errorf("server saw %d requests, want exactly 1", got)
	}
	page := res.Pages[0]
	if !strings.Contains(page, "<m:count>1</m:count>") {
		t.Errorf("expected a single match:\n%s", page)
	}
	if !strings.Contains(page, "<d:NormalizedVersion>2.0.0</d:NormalizedVersion>") {
		t.Errorf("expected version 2.0.0:\n%s", page)
	}
}

func TestClientFindVersionRange(t *testing.T) {
	srv := galleryFixture(t)

	rng, err := feed.ParseRange("[1.5.0, 2.2.5)")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Name: "Carbon", Range: rng})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}

	page := res.Pages[0]
	for _, v := range []string{"1.5.0", "2.0.0"} {
		if !strings.Contains(page, "<d:NormalizedVersion>"+v+"</d:NormalizedVersion>") {
			t.Errorf("expected version %s in range result:\n%s", v, page)
		}
	}
	if strings.Contains(page, "2.2.5") {
		t.Errorf("2.2.5 is outside the half-open range:\n%s", page)
	}
}

func TestClientFindAllVersions(t *testing.T) {
	srv := galleryFixture(t)

	// An unbounded range lists every stable version of the package.
	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{Name: "Carbon", Range: &feed.VersionRange{}})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	page := res.Pages[0]
	if !strings.Contains(page, "<m:count>3</m:count>") {
		t.Errorf("expected the three stable versions:\n%s", page)
	}
	if strings.Contains(page, "2.3.0-beta1") {
		t.Errorf("stable listing should exclude prereleases:\n%s", page)
	}
}

func TestClientFindLatestInRange(t *testing.T) {
	srv := galleryFixture(t)

	rng, err := feed.ParseRange("[1.0.0, 2.2.0)")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	res, err := testClient(t, srv.URL).Find(context.Background(), feed.Query{
		Name:       "Carbon",
		Range:      rng,
		LatestOnly: true,
	})
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	page := res.Pages[0]
	if !strings.Contains(page, "<d:NormalizedVersion>2.0.0</d:NormalizedVersion>") {
		t.Errorf("latest in range should be 2.0.0:\n%s", page)
	}
	if strings.Contains(page, "1.5.0") {
		t.Errorf("latest-only fetch should return a single entry:\n%s", page)
	}
}

func TestClientFindByCommandUnsupported(t *testing.T) {
	srv := galleryFixture(t)

	_, err := testClient(t, srv.URL).FindByCommand(context.Background(), []string{"Get-Foo"}, false)
	if !errors.Is(err, feed.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestClientDownload(t *testing.T) {
	srv := galleryFixture(t)
	client := testClient(t, srv.URL)

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"exact version", "2.0.0", "nupkg:Carbon:2.0.0"},
		{"latest stable", "", "nupkg:Carbon:2.2.5"},
		{"short version is normalized", "2.0", "nupkg:Carbon:2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := client.Download(context.Background(), "Carbon", tt.version)
			if err != nil {
				t.Fatalf("Download error: %v", err)
			}
			defer body.Close()
			data, err := io.ReadAll(body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("content = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestClientDownloadErrors(t *testing.T) {
	srv := galleryFixture(t)
	client := testClient(t, srv.URL)

	if _, err := client.Download(context.Background(), "Ghost", ""); !errors.Is(err, feed.ErrNotFound) {
		t.Errorf("missing package: error = %v, want ErrNotFound", err)
	}
	if _, err := client.Download(context.Background(), "Car*", ""); !errors.Is(err, feed.ErrArgument) {
		t.Errorf("wildcard name: error = %v, want ErrArgument", err)
	}
	if _, err := client.Download(context.Background(), "", "1.0.0"); !errors.Is(err, feed.ErrArgument) {
		t.Errorf("empty name: error = %v, want ErrArgument", err)
	}
	if _, err := client.Download(context.Background(), "Carbon", "bogus##"); !errors.Is(err, feed.ErrArgument) {
		t.Errorf("bad version: error = %v, want ErrArgument", err)
	}
}
