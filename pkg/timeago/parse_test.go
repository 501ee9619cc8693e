package timeago

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"
)

func mustTable(t *testing.T, locale, sep string, forms map[Unit][]string, opts ...TableOption) *PatternTable {
	t.Helper()
	table, err := NewPatternTable(locale, sep, forms, opts...)
	if err != nil {
		t.Fatalf("NewPatternTable(%s): %v", locale, err)
	}
	return table
}

func turkish(t *testing.T) *PatternTable {
	return mustTable(t, "tr", " ", map[Unit][]string{
		Second: {"saniye"},
		Minute: {"dakika"},
		Hour:   {"saat"},
		Day:    {"gün"},
		Week:   {"hafta"},
		Month:  {"ay"},
		Year:   {"yıl"},
	})
}

func TestParseTurkishScenario(t *testing.T) {
	table := turkish(t)

	d, err := Parse("3 saat", table)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != (Duration{Unit: Hour, Quantity: 3}) {
		t.Fatalf("expected 3 hours, got %v", d)
	}

	d, err = Parse("saat", table)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != (Duration{Unit: Hour, Quantity: 1}) {
		t.Fatalf("expected 1 hour, got %v", d)
	}

	noDays := mustTable(t, "tr", " ", map[Unit][]string{
		Second: {"saniye"}, Minute: {"dakika"}, Hour: {"saat"},
		Day: {"dün"}, Week: {"hafta"}, Month: {"ay"}, Year: {"yıl"},
	})
	_, err = Parse("3 gün", noDays)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	var nm *NoMatchError
	if !errors.As(err, &nm) || nm.Locale != "tr" || nm.Phrase != "3 gün" {
		t.Fatalf("expected NoMatchError with context, got %#v", err)
	}
}

func TestParseNormalisesInput(t *testing.T) {
	table := turkish(t)
	cases := []struct {
		in   string
		want Duration
	}{
		{"  5   dakika önce ", Duration{Minute, 5}},
		{"5 dakika", Duration{Minute, 5}},
		{"5　HAFTA", Duration{Week, 5}},
		{"5dakika", Duration{Minute, 5}},
		{"(2 ay)", Duration{Month, 2}},
		{"12 yıl önce.", Duration{Year, 12}},
	}
	for _, c := range cases {
		got, err := table.Parse(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parse %q: expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestParseTokenBoundaries(t *testing.T) {
	table := turkish(t)
	// "ay" must not match inside "ayrıca" or "saat" inside "saatler".
	for _, in := range []string{"ayrıca", "3 saatler"} {
		if _, err := table.Parse(in); !errors.Is(err, ErrNoMatch) {
			t.Errorf("parse %q: expected ErrNoMatch, got %v", in, err)
		}
	}
}

func TestLongestMatchAcrossUnits(t *testing.T) {
	// "min" is a strict prefix token of the two-token form "min ago" owned by a different unit.
	table := mustTable(t, "xx", " ", map[Unit][]string{
		Second: {"sec"},
		Minute: {"min ago"},
		Hour:   {"min"},
		Day:    {"day"},
		Week:   {"week"},
		Month:  {"month"},
		Year:   {"year"},
	})
	d, err := table.Parse("4 min ago")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Unit != Minute || d.Quantity != 4 {
		t.Fatalf("expected the longer form to win, got %v", d)
	}
	d, err = table.Parse("4 min")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Unit != Hour {
		t.Fatalf("expected hour for the short form, got %v", d)
	}
}

func TestLongestMatchSubstringWithoutSeparator(t *testing.T) {
	// Mirrors the Khmer data, where the minute form is a substring of a second form.
	table := mustTable(t, "km", "", map[Unit][]string{
		Second: {"វិនាទី​មុន", "១វិនាទីមុន"},
		Minute: {"នាទីមុន", "១នាទីមុន"},
		Hour:   {"ម៉ោង​មុន"},
		Day:    {"ថ្ងៃមុន"},
		Week:   {"ស​ប្តា​ហ៍​មុន"},
		Month:  {"ខែមុន"},
		Year:   {"ឆ្នាំ​មុន"},
	}, WithDigits("០១២៣៤៥៦៧៨៩"))

	cases := []struct {
		in   string
		want Duration
	}{
		{"១វិនាទីមុន", Duration{Second, 1}},
		{"វិនាទីមុន", Duration{Second, 1}},
		{"៣ វិនាទី​មុន", Duration{Second, 3}},
		{"5នាទីមុន", Duration{Minute, 5}},
		{"5១នាទីមុន", Duration{Minute, 5}},
		{"១២ខែមុន", Duration{Month, 12}},
		{"2សប្តាហ៍មុន", Duration{Week, 2}},
	}
	for _, c := range cases {
		got, err := table.Parse(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parse %q: expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestEmptySeparatorMatchesLikeSpaced(t *testing.T) {
	spaced := turkish(t)
	packed := mustTable(t, "ja", "", map[Unit][]string{
		Second: {"秒前"}, Minute: {"分前"}, Hour: {"時間前"}, Day: {"日前"},
		Week: {"週間前"}, Month: {"か月前"}, Year: {"年前"},
	})
	a, err := spaced.Parse("7 saat")
	if err != nil {
		t.Fatalf("parse spaced: %v", err)
	}
	b, err := packed.Parse("7時間前")
	if err != nil {
		t.Fatalf("parse packed: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical results, got %v and %v", a, b)
	}
}

func TestSpecialCasePrecedence(t *testing.T) {
	table := mustTable(t, "de", " ", map[Unit][]string{
		Second: {"sekunde", "sekunden"},
		Minute: {"minute", "minuten"},
		Hour:   {"stunde", "stunden"},
		Day:    {"tag", "tagen"},
		Week:   {"woche", "wochen"},
		Month:  {"monat", "monaten"},
		Year:   {"jahr", "jahren"},
	},
		WithSpecialCase("gestern", Day, 1),
		WithSpecialCase("vorgestern", Day, 2),
		WithSpecialCase("vor einer stunde", Hour, 1),
	)

	cases := []struct {
		in   string
		want Duration
	}{
		{"Gestern", Duration{Day, 1}},
		{"vorgestern", Duration{Day, 2}},
		// The literal also contains the generic form "stunde"; the literal wins.
		{"vor einer Stunde", Duration{Hour, 1}},
		{"vor 3 Stunden", Duration{Hour, 3}},
	}
	for _, c := range cases {
		got, err := table.Parse(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parse %q: expected %v, got %v", c.in, c.want, got)
		}
	}

	sc := table.SpecialCases()
	if sc["gestern"] != (Duration{Day, 1}) {
		t.Fatalf("expected gestern special case, got %v", sc)
	}
}

func TestAmbiguousMatch(t *testing.T) {
	table := mustTable(t, "xx", " ", map[Unit][]string{
		Second: {"s"}, Minute: {"mo"}, Hour: {"h"}, Day: {"d"},
		Week: {"w"}, Month: {"mo"}, Year: {"y"},
	})
	_, err := table.Parse("2 mo")
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	var amb *AmbiguousMatchError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousMatchError, got %T", err)
	}
	if len(amb.Candidates) != 2 || amb.Candidates[0].Unit != Minute || amb.Candidates[1].Unit != Month {
		t.Fatalf("unexpected candidates: %+v", amb.Candidates)
	}
	if !strings.Contains(amb.Error(), "2 mo") {
		t.Fatalf("expected phrase in error message: %v", amb)
	}
}

func TestUnknownInput(t *testing.T) {
	table := turkish(t)
	for _, in := range []string{"banana", "", "   ", "42"} {
		if _, err := table.Parse(in); !errors.Is(err, ErrNoMatch) {
			t.Errorf("parse %q: expected ErrNoMatch, got %v", in, err)
		}
	}
}

func TestQuantityOverflow(t *testing.T) {
	table := turkish(t)
	_, err := table.Parse("99999999999999999999999 saat")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for overflowing quantity, got %v", err)
	}
}

func TestLocaleDigits(t *testing.T) {
	table := mustTable(t, "ar", " ", map[Unit][]string{
		Second: {"ثانية"}, Minute: {"دقيقة", "دقائق"}, Hour: {"ساعة", "ساعات"},
		Day: {"يوم", "أيام"}, Week: {"أسبوع"}, Month: {"شهر"}, Year: {"سنة"},
	}, WithDigits("٠١٢٣٤٥٦٧٨٩"))

	d, err := table.Parse("منذ ١٥ دقيقة")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != (Duration{Minute, 15}) {
		t.Fatalf("expected 15 minutes, got %v", d)
	}
	if table.Digits() != "٠١٢٣٤٥٦٧٨٩" {
		t.Fatalf("unexpected digits %q", table.Digits())
	}
}

func TestRoundTrip(t *testing.T) {
	table := turkish(t)
	for _, u := range Units() {
		form := table.FormsFor(u)[0]
		for _, q := range []int{1, 2, 5, 100} {
			phrase := strings.Join([]string{strconv.Itoa(q), form}, table.Separator())
			got, err := table.Parse(phrase)
			if err != nil {
				t.Fatalf("parse %q: %v", phrase, err)
			}
			if got != (Duration{u, q}) {
				t.Fatalf("parse %q: expected %v, got %v", phrase, Duration{u, q}, got)
			}
		}
	}
}

func TestParseDuration(t *testing.T) {
	en := mustTable(t, "en", " ", map[Unit][]string{
		Second: {"second", "seconds", "sec"},
		Minute: {"minute", "minutes", "min"},
		Hour:   {"hour", "hours"},
		Day:    {"day", "days"},
		Week:   {"week", "weeks"},
		Month:  {"month", "months"},
		Year:   {"year", "years"},
	})
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1 hour 23 minutes", time.Hour + 23*time.Minute},
		{"2 hours, 5 minutes and 10 seconds", 2*time.Hour + 5*time.Minute + 10*time.Second},
		{"minute", time.Minute},
		{"3 days", 72 * time.Hour},
	}
	for _, c := range cases {
		got, err := en.ParseDuration(c.in)
		if err != nil {
			t.Fatalf("ParseDuration %q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseDuration %q: expected %v, got %v", c.in, c.want, got)
		}
	}
	if _, err := en.ParseDuration("banana split"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}

	for _, in := range []string{"400 years", "200 years 200 years", strconv.Itoa(math.MaxInt) + " seconds"} {
		d, err := en.ParseDuration(in)
		var nm *NoMatchError
		if !errors.As(err, &nm) || !strings.Contains(nm.Reason, "out of range") {
			t.Errorf("ParseDuration %q: expected quantity out of range, got %v, %v", in, d, err)
		}
	}

	ja := mustTable(t, "ja", "", map[Unit][]string{
		Second: {"秒"}, Minute: {"分"}, Hour: {"時間"}, Day: {"日"},
		Week: {"週間"}, Month: {"か月"}, Year: {"年"},
	})
	got, err := ja.ParseDuration("1時間23分")
	if err != nil {
		t.Fatalf("ParseDuration: %v", err)
	}
	if got != time.Hour+23*time.Minute {
		t.Fatalf("expected 1h23m, got %v", got)
	}
}
