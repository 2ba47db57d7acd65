package sheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/lingualisten/pkg/models"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `id,code,text_target,text_native,audio_target_url,audio_native_url,category,status
1,GR-001,Ẹ kú àárọ̀,Good morning,https://cdn.example.com/gr1.mp3,https://cdn.example.com/gr1-en.mp3,greetings,published
2,GR-002,Ẹ kú ọ̀sán,Good afternoon,,,Greetings,
3,FD-001,Mo fẹ́ jẹun,I want to eat,,,food,draft
4,XX-001,Ó dàbọ̀,Goodbye,,,weather,published

5,,Missing code,,,,,published
`

func TestParseCSV(t *testing.T) {
	res, err := Parse([]byte(sampleCSV), DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(res.Items), res.Items)
	}
	if res.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", res.TotalRows)
	}
	if res.Unpublished != 1 {
		t.Errorf("Unpublished = %d, want 1", res.Unpublished)
	}
	if res.Skipped != 1 || len(res.Errors) != 1 {
		t.Errorf("Skipped = %d errors = %v", res.Skipped, res.Errors)
	}
	if res.Recategorized != 1 {
		t.Errorf("Recategorized = %d, want 1", res.Recategorized)
	}

	first := res.Items[0]
	if first.Code != "GR-001" || first.TextNative != "Good morning" || first.Audio.Target != "https://cdn.example.com/gr1.mp3" {
		t.Errorf("unexpected first item %+v", first)
	}
	if res.Items[1].Category != models.CategoryGreetings {
		t.Errorf("category not normalized: %q", res.Items[1].Category)
	}
	if res.Items[2].Category != models.CategoryMisc {
		t.Errorf("unknown category should fall back to misc, got %q", res.Items[2].Category)
	}
	for _, it := range res.Items {
		if it.PublishState != models.Published {
			t.Errorf("item %s has state %q", it.ID, it.PublishState)
		}
	}
}

func TestParseLegacyHeaders(t *testing.T) {
	data := "\xef\xbb\xbfid,code,phrase_yoruba,phrase_english,audio_yoruba_url,audio_english_url,category,status\n" +
		"7,Q-1,Báwo ni?,How are you?,https://a/q1.m4a,,questions,published\n"

	res, err := Parse([]byte(data), DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	it := res.Items[0]
	if it.ID != "7" || it.TextTarget != "Báwo ni?" || it.TextNative != "How are you?" || it.Audio.Target != "https://a/q1.m4a" {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"whitespace":     "   \n\n",
		"no id column":   "code,text_target\nA,b\n",
		"no code column": "id,text_target\n1,b\n",
		"html error":     "<html><body>Sign in</body></html>",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data), DefaultConfig())
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParseHeaderOnly(t *testing.T) {
	res, err := Parse([]byte("id,code,text_target\n"), DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(res.Items))
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"id", "code", "text_target", "text_native", "audio_target_url", "audio_native_url", "category", "status"},
		{"10", "SH-001", "Èló ni?", "How much?", "", "", "shopping", "published"},
		{"11", "SH-002", "Ó wọ́n jù", "Too expensive", "", "", "shopping", "draft"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	if DetectFormat(buf.Bytes()) != FormatXLSX {
		t.Fatal("xlsx payload not detected")
	}

	res, err := Parse(buf.Bytes(), DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Code != "SH-001" || res.Items[0].Category != models.CategoryShopping {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	if res.Unpublished != 1 {
		t.Errorf("Unpublished = %d", res.Unpublished)
	}
}

func TestIsPublished(t *testing.T) {
	for _, s := range []string{"", "published", " Published "} {
		if !IsPublished(s) {
			t.Errorf("%q should be published", s)
		}
	}
	for _, s := range []string{"draft", "DRAFT", "disabled", "archived"} {
		if IsPublished(s) {
			t.Errorf("%q should not be published", s)
		}
	}
}

func ExampleParse() {
	res, _ := Parse([]byte("id,code,text_native,category\n1,N-1,One,numbers\n"), DefaultConfig())
	fmt.Println(res.Items[0].Code, res.Items[0].Category)
	// Output: N-1 numbers
}
