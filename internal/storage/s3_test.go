package storage

import "testing"

func TestIsStagedKey(t *testing.T) {
	tests := map[string]bool{
		"u1/imports/stock.xlsx":        true,
		"u1/imports/nested/images.zip": true,
		"u1/3f2a.png":                  false,
		"u1/imports/":                  false,
		"/imports/stock.xlsx":          false,
		"imports/stock.xlsx":           false,
		"u1/exports/stock.xlsx":        false,
	}
	for key, want := range tests {
		if got := IsStagedKey(key); got != want {
			t.Errorf("IsStagedKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestPublicURL(t *testing.T) {
	s := &S3Store{publicBaseURL: "https://cdn.example.com/product-images"}
	got := s.PublicURL("u1/imports/仕入れ 3月.xlsx")
	want := "https://cdn.example.com/product-images/u1/imports/%E4%BB%95%E5%85%A5%E3%82%8C%203%E6%9C%88.xlsx"
	if got != want {
		t.Errorf("PublicURL = %s\nwant %s", got, want)
	}
}

func TestDefaultPublicBase(t *testing.T) {
	if got := defaultPublicBase(Config{Bucket: "b", Region: "ap-northeast-1"}); got != "https://b.s3.ap-northeast-1.amazonaws.com" {
		t.Errorf("aws base = %s", got)
	}
	if got := defaultPublicBase(Config{Bucket: "b", Endpoint: "http://localhost:9000/"}); got != "http://localhost:9000/b" {
		t.Errorf("endpoint base = %s", got)
	}
}
