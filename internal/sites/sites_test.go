package sites

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/logger"
	"github.com/pfrederiksen/bizevents/internal/scraper"
	"github.com/pfrederiksen/bizevents/internal/siteconfig"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// serve answers each path with its fixed body.
func serve(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// runSite parses the configuration (with {{base}} replaced by base) and runs
// the named adapter against it.
func runSite(t *testing.T, name, base, config string, env *scraper.Env) (*scraper.Result, error) {
	t.Helper()
	cfg, err := siteconfig.Parse(name, []byte(strings.ReplaceAll(config, "{{base}}", base)))
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	adapter, ok := Lookup(name)
	if !ok {
		t.Fatalf("no adapter registered for %s", name)
	}
	if env == nil {
		env = testEnv()
	}
	return adapter.Process(context.Background(), env, cfg)
}

func testEnv() *scraper.Env {
	return &scraper.Env{
		Log: logger.Discard(),
		Now: func() time.Time { return fixedNow },
	}
}

type want struct {
	title, link, start, end string
}

func checkCandidates(t *testing.T, got []event.Candidate, wants []want) {
	t.Helper()
	if len(got) != len(wants) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(wants), len(got), got)
	}
	for i, w := range wants {
		c := got[i]
		if c.Title != w.title {
			t.Errorf("candidate %d: title = %q, want %q", i, c.Title, w.title)
		}
		if w.link != "" && c.Link != w.link {
			t.Errorf("candidate %d: link = %q, want %q", i, c.Link, w.link)
		}
		if c.Start.String() != w.start || c.End.String() != w.end {
			t.Errorf("candidate %d: dates = %s / %s, want %s / %s", i, c.Start, c.End, w.start, w.end)
		}
	}
}

func TestRegistry(t *testing.T) {
	expected := []string{
		"aago_events", "abc_cfl_business", "abc_swfl_tampa", "bama", "boma_orl_events",
		"boma_tb", "cai_cf", "cai_suncoast", "cai_swfl", "ccc_orl", "ccim_orl", "cfhla",
		"coaa", "core_net", "crew_srq", "crew_swfl", "fgcar", "gcbx", "ifma_orl", "ifma_tb",
		"irem_tb", "macf", "naiop_orl", "naiop_tb", "reic", "reis", "sama", "smps_cf",
		"sorep", "swfaa_affiliate_event", "tbra", "uli_swfl",
	}
	names := Names()
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("registered sites = %v, want %v", names, expected)
	}
	for _, name := range expected {
		a, ok := Lookup(name)
		if !ok || a.Name() != name {
			t.Errorf("Lookup(%q) = %v, %v", name, a, ok)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("expected unknown site lookup to fail")
	}
}

func TestSMPSCF(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<html><body>
			<div class="ev"><h3>Lunch and Learn</h3>
				<div class="col-md-4"><div class="col-md-11">April 9, 2025</div></div>
				<div class="col-md-4"><div class="col-md-11">11:30 AM to 1:00 PM</div></div>
				<a href="/meetinginfo.php?id=7">Details</a></div>
			<div class="ev"><h3>Annual Gala</h3>
				<div class="col-md-4"><div class="col-md-11">May 2, 2025</div></div>
				<div class="col-md-4"><div class="col-md-11">6:00 PM to 10:00 PM</div></div></div>
			<div class="ev"><h3>No Range</h3>
				<div class="col-md-4"><div class="col-md-11">May 3, 2025</div></div>
				<div class="col-md-4"><div class="col-md-11">All day</div></div></div>
		</body></html>`,
	})

	result, err := runSite(t, "smps_cf", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "div.ev",
		"organizer": "SMPS CF", "industry": "AEC", "market": "ORL", "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Lunch and Learn", server.URL + "/meetinginfo.php?id=7", "2025-04-09T11:30:00", "2025-04-09T13:00:00"},
		{"Annual Gala", server.URL + "/events", "2025-05-02T18:00:00", "2025-05-02T22:00:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected the rangeless event dropped, got %d", result.Dropped)
	}
	if result.Candidates[0].Organizer != "SMPS CF" || result.Candidates[0].Weekday != "Wednesday" {
		t.Errorf("unexpected attribution %+v", result.Candidates[0])
	}
}

func TestIFMATBEventScript(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<ul>
			<li class="ev"><a class="t" href="/event-1">Facilities Summit</a></li>
			<li class="ev"><a class="t" href="/event-2">Broken Script</a></li>
		</ul>`,
		"/event-1": `<script>
			const event = {
				title: 'Facilities Summit',
				start: '2025-04-09T17:30:00Z',
				end: "2025-04-09T19:30:00Z",
				location: '100 Main St'
			};
		</script>`,
		"/event-2": `<script>var other = 1;</script>`,
	})

	result, err := runSite(t, "ifma_tb", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}",
		"event_list_selector": "li.ev", "event_link_selector": "a.t", "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Facilities Summit", server.URL + "/event-1", "2025-04-09T13:30:00-04:00", "2025-04-09T15:30:00-04:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", result.Dropped)
	}
}

func TestCCIMOrlFeed(t *testing.T) {
	var calendar string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calendar = r.URL.Query().Get("calendar")
		w.Write([]byte(`{"EVENTS": [
			{"3": "Market Forecast", "6": "https://ccim.example/e1", "10": [100], "15": "2025-04-09", "16": "17:30", "17": "2025-04-09", "18": "19:30"},
			{"3": "Committee", "6": "https://ccim.example/e2", "10": ["289"], "15": "2025-04-10"},
			{"3": "TBD", "6": "https://ccim.example/e3", "15": "#"},
			{"6": "https://ccim.example/e4", "15": "2025-04-11", "16": "#"}
		]}`))
	}))
	defer server.Close()

	result, err := runSite(t, "ccim_orl", server.URL, `{"url": "{{base}}/feed", "calendar": 12, "scraper_interval": 0}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calendar != "12" {
		t.Errorf("expected calendar=12 in query, got %q", calendar)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Market Forecast", "https://ccim.example/e1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
		{"Unknown", "https://ccim.example/e4", "2025-04-11T00:00:00", "2025-04-11T23:59:00"},
	})
	if result.Filtered != 2 {
		t.Errorf("expected 2 filtered, got %d", result.Filtered)
	}
}

func TestULISWFLFeed(t *testing.T) {
	server := serve(t, map[string]string{
		"/api/events/2025": `{"events": [
			{"Event_Title": "Tampa Trends", "Event_Id": "101", "Start_Date": "2025-04-09T00:00:00", "Start_Time": "8:00 AM",
			 "End_Date": "2025-04-09T00:00:00", "End_Time": "10:00 AM", "City": "Tampa"},
			{"Event_Title": "ULI Southwest Florida Luncheon", "Event_Id": "102", "Start_Date": "2025-04-10", "Start_Time": "11:00 AM",
			 "End_Date": "2025-04-10", "End_Time": "1:00 PM"},
			{"Event_Title": "Webinar Series", "Event_Id": "103", "Start_Date": "2025-04-11", "Start_Time": "11:00 AM",
			 "End_Date": "2025-04-11", "End_Time": "12:00 PM", "Event_Programs": "Webinar"},
			{"Event_Title": "Naples Walk", "Registrant_List_Link": "https://uli.example/register/9", "Start_Date": "2025-04-12",
			 "End_Date": "2025-04-12", "City": "Naples"}
		]}`,
	})

	result, err := runSite(t, "uli_swfl", server.URL, `{
		"url": "{{base}}/api/events/", "base_url": "https://swfl.uli.example",
		"organizer": "ULI SWFL", "industry": "CRE", "market": "SWFL",
		"program_filter": ["webinar"], "type_filter": [], "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Tampa Trends", "https://swfl.uli.example/uli-southwest-florida-webinars-events/detail/101", "2025-04-09T08:00:00", "2025-04-09T10:00:00"},
		{"Naples Walk", "https://uli.example/register/9", "2025-04-12T00:00:00", "2025-04-12T23:59:00"},
	})
	if c := result.Candidates[0]; c.Organizer != "ULI TB" || c.Market != "TPA" {
		t.Errorf("expected Tampa event reassigned, got %s/%s", c.Organizer, c.Market)
	}
	if c := result.Candidates[1]; c.Organizer != "ULI SWFL" || c.Market != "SWFL" {
		t.Errorf("expected configured attribution, got %s/%s", c.Organizer, c.Market)
	}
	if result.Filtered != 2 {
		t.Errorf("expected 2 filtered, got %d", result.Filtered)
	}
}

func TestABCSWFLTampaFeed(t *testing.T) {
	server := serve(t, map[string]string{
		"/calendar": "\xef\xbb\xbf" + `<?xml version="1.0" encoding="utf-8"?>
<ArrayOfNewCalendarDatav3>
  <newCalendarDatav3>
    <id>55</id><title>Fort Myers Golf Classic</title><EventType>Networking</EventType>
    <StartDateTimeUtc>2025-04-09T16:00:00</StartDateTimeUtc><EndDateTimeUtc>2025-04-09T20:00:00</EndDateTimeUtc>
  </newCalendarDatav3>
  <newCalendarDatav3>
    <id>56</id><title>OSHA 10</title><EventType>Educational Event</EventType>
    <StartDateTimeUtc>2025-04-10T12:00:00</StartDateTimeUtc><EndDateTimeUtc>2025-04-10T20:00:00</EndDateTimeUtc>
  </newCalendarDatav3>
  <newCalendarDatav3>
    <id></id><title>Safety Breakfast</title><EventType>Networking</EventType>
    <registrationUrl>https://abc.example/register/3</registrationUrl>
    <StartDateTimeUtc>2025-04-11T11:30:00</StartDateTimeUtc><EndDateTimeUtc>2025-04-11T13:00:00</EndDateTimeUtc>
  </newCalendarDatav3>
</ArrayOfNewCalendarDatav3>`,
	})

	result, err := runSite(t, "abc_swfl_tampa", server.URL, `{"url": "{{base}}/calendar", "industry": "Construction", "scraper_interval": 0}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Fort Myers Golf Classic", "https://web.abcflgulf.org/events/Fort%20Myers%20Golf%20Classic-55/details", "2025-04-09T12:00:00-04:00", "2025-04-09T16:00:00-04:00"},
		{"Safety Breakfast", "https://abc.example/register/3", "2025-04-11T07:30:00-04:00", "2025-04-11T09:00:00-04:00"},
	})
	if c := result.Candidates[0]; c.Organizer != "ABC SWFL" || c.Market != "SWFL" {
		t.Errorf("expected Fort Myers event attributed to SWFL, got %s/%s", c.Organizer, c.Market)
	}
	if c := result.Candidates[1]; c.Organizer != "ABC TB" || c.Market != "TPA" || c.Industry != "Construction" {
		t.Errorf("unexpected attribution %+v", c)
	}
	if result.Filtered != 1 {
		t.Errorf("expected the educational event filtered, got %d", result.Filtered)
	}
}

type fakeRenderer struct {
	page string
	url  string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	f.url = url
	return f.page, nil
}

func TestTBRARendered(t *testing.T) {
	renderer := &fakeRenderer{page: `<div>
		<div class="SFevtcal"><a class="SFevt" data-ttl="Broker Open House" href="https://tbra.example/e/1"
			num-sdp="1744234200" num-edp="1744241400" num-cal="3"></a></div>
		<div class="SFevtcal"></div>
		<div class="SFevtcal"><a class="SFevt" data-ttl="Broker Zoom" href="https://tbra.example/e/2"
			num-sdp="1744234200" num-edp="1744241400" num-cal="7"></a></div>
		<div class="SFevtcal"><a class="SFevt" data-ttl="Bad Stamp" href="https://tbra.example/e/3"
			num-sdp="soon" num-edp="later" num-cal="3"></a></div>
	</div>`}
	env := testEnv()
	env.Renderer = renderer

	result, err := runSite(t, "tbra", "", `{"url": "https://tbra.example/calendar", "calendar_filter": [7], "scraper_interval": 0}`, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.url != "https://tbra.example/calendar" {
		t.Errorf("rendered %q", renderer.url)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Broker Open House", "https://tbra.example/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
	})
	if result.Filtered != 1 || result.Dropped != 1 {
		t.Errorf("expected 1 filtered and 1 dropped, got %d/%d", result.Filtered, result.Dropped)
	}
}

func TestTBRAWithoutRenderer(t *testing.T) {
	_, err := runSite(t, "tbra", "", `{"url": "https://tbra.example/calendar"}`, nil)
	if !errors.Is(err, ErrNoRenderer) {
		t.Errorf("expected ErrNoRenderer, got %v", err)
	}
}

func TestSAMACommunity(t *testing.T) {
	detail := func(community string) string {
		return `<div id="MainCopy_ctl09_CommunityPanel">` + community + `</div>
			<p class="when">Posted</p>
			<p class="when">Apr 9, 2025 from 5:30 PM to 7:30 PM</p>`
	}
	server := serve(t, map[string]string{
		"/events": `<table>
			<tr class="ev"><td><a class="l" href="/e/1"><span class="t">Spring Social</span></a></td></tr>
			<tr class="ev"><td><a class="l" href="/e/2"><span class="t">Other Group Meetup</span></a></td></tr>
		</table>`,
		"/e/1": detail("SAMA Events"),
		"/e/2": detail("IFMA Events"),
	})

	result, err := runSite(t, "sama", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "tr.ev",
		"event_link_selector": "a.l", "event_title_selector": "span.t",
		"detail_selectors": {"DateTime": {"selector": "p.when", "position": 1}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Spring Social", server.URL + "/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
	})
	if result.Filtered != 1 {
		t.Errorf("expected 1 filtered, got %d", result.Filtered)
	}
}

func TestBAMAAddressFilter(t *testing.T) {
	detail := func(location string) string {
		return `<script>const event = { start: '2025-04-09T21:30:00Z', end: '2025-04-09T23:00:00Z', location: '` + location + `' };</script>`
	}
	server := serve(t, map[string]string{
		"/events": `<div>
			<article><a class="l" href="/e/1"><h2>Builders Mixer</h2></a></article>
			<article><a class="l" href="/e/2"><h2>Virtual Forum</h2></a></article>
		</div>`,
		"/e/1": detail("400 Bay St, Tampa FL"),
		"/e/2": detail("Online via Zoom"),
	})

	result, err := runSite(t, "bama", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "article",
		"event_link_selector": "a.l", "event_title_selector": "h2",
		"detail_selectors": {"Address_filter": ["online"]}, "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Builders Mixer", server.URL + "/e/1", "2025-04-09T17:30:00-04:00", "2025-04-09T19:00:00-04:00"},
	})
	if result.Candidates[0].Address != "400 Bay St, Tampa FL" {
		t.Errorf("expected venue address kept, got %q", result.Candidates[0].Address)
	}
	if result.Filtered != 1 {
		t.Errorf("expected 1 filtered, got %d", result.Filtered)
	}
}

func TestCrewSRQ(t *testing.T) {
	server := serve(t, map[string]string{
		"/api/events": `[
			{"title": " Spring Social ", "chapter": "CREW Sarasota", "netforumId": "nf-1",
			 "startDateTime": "2025-04-09T17:30:00", "endDateTime": "2025-04-09T19:30:00"},
			{"title": "Board Retreat", "chapter": "CREW Sarasota", "netforumId": "nf-2", "registrationUrl": "https://crew.example/reg/2",
			 "startDateTime": "2025-04-10T09:00:00", "endDateTime": "2025-04-10T12:00:00"},
			{"title": "Elsewhere", "chapter": "CREW Boston", "netforumId": "nf-3",
			 "startDateTime": "2025-04-10T09:00:00", "endDateTime": "2025-04-10T12:00:00"}
		]`,
		"/chapter": `<script id="__NEXT_DATA__" type="application/json">{"props": {"pageProps": {"pageProps": {"story": {"content": {
			"page_template": [{"storyblok_events": [{"netforum_event_id": "nf-1", "full_slug": "chapters/crew-sarasota/events/spring-social/"}]}]
		}}}}}}</script>`,
	})

	result, err := runSite(t, "crew_srq", server.URL, `{
		"url": "{{base}}/api/events", "url2": "{{base}}/chapter", "base_url": "https://crew.example",
		"event_type_selector": ["CREW Sarasota"], "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Spring Social", "https://crew.example/events/spring-social", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
		{"Board Retreat", "https://crew.example/reg/2", "2025-04-10T09:00:00", "2025-04-10T12:00:00"},
	})
}

func TestCrewSWFLEventArray(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<script type="application/ld+json">[
			{"@type": "Event", "name": "Women in CRE Breakfast", "url": "https://crew.example/e/1",
			 "startDate": "2025-04-09T07:30:00-04:00", "endDate": "2025-04-09T09:00:00-04:00"},
			{"@type": "Event", "name": "Virtual Book Club", "url": "https://crew.example/e/2",
			 "startDate": "2025-04-10T12:00:00-04:00", "endDate": "2025-04-10T13:00:00-04:00"}
		]</script>`,
	})

	result, err := runSite(t, "crew_swfl", server.URL, `{"url": "{{base}}/events", "title_filter": ["virtual"], "scraper_interval": 0}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkCandidates(t, result.Candidates, []want{
		{"Women in CRE Breakfast", "https://crew.example/e/1", "2025-04-09T07:30:00-04:00", "2025-04-09T09:00:00-04:00"},
	})
	if result.Filtered != 1 {
		t.Errorf("expected 1 filtered, got %d", result.Filtered)
	}
}

func TestCrewSWFLRequiresEventArray(t *testing.T) {
	server := serve(t, map[string]string{"/events": `<script type="application/ld+json">{"@type": "Organization"}</script>`})

	_, err := runSite(t, "crew_swfl", server.URL, `{"url": "{{base}}/events", "scraper_interval": 0}`, nil)
	if err == nil {
		t.Fatal("expected a page without an event array to fail the site")
	}
}

func TestMissingConfigKeys(t *testing.T) {
	_, err := runSite(t, "reic", "", `{"url": "https://reic.example"}`, nil)
	if !errors.Is(err, siteconfig.ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
}

func TestTextParsers(t *testing.T) {
	tests := []struct {
		name       string
		parse      func() (event.Timestamp, event.Timestamp, error)
		start, end string
		wantError  bool
	}{
		{
			name:  "reic end clock borrows meridiem",
			parse: func() (event.Timestamp, event.Timestamp, error) { return reicParse("Wednesday, April 9, 2025", "8:00 AM", "9:30 EDT") },
			start: "2025-04-09T08:00:00", end: "2025-04-09T09:30:00",
		},
		{
			name:      "reic without weekday",
			parse:     func() (event.Timestamp, event.Timestamp, error) { return reicParse("April 9, 2025", "8:00 AM", "9:30 AM") },
			wantError: true,
		},
		{
			name:  "macf single day",
			parse: func() (event.Timestamp, event.Timestamp, error) { return macfParse("When: Apr 16, 2025 from 08:30 AM to 12:00 PM (ET)") },
			start: "2025-04-16T08:30:00", end: "2025-04-16T12:00:00",
		},
		{
			name: "macf multi day",
			parse: func() (event.Timestamp, event.Timestamp, error) {
				return macfParse("Starts: May 15, 2025 09:00 AM (ET) Ends: May 18, 2025 05:00 PM (ET)")
			},
			start: "2025-05-15T09:00:00", end: "2025-05-18T17:00:00",
		},
		{
			name:  "cfhla with zone annotations",
			parse: func() (event.Timestamp, event.Timestamp, error) { return cfhlaParse("Tuesday, April 1, 2025 (9:00 AM - 10:30 AM) (EDT)") },
			start: "2025-04-01T09:00:00", end: "2025-04-01T10:30:00",
		},
		{
			name:  "cfhla without range",
			parse: func() (event.Timestamp, event.Timestamp, error) { return cfhlaParse("Tuesday, April 1, 2025 (All Day)") },
			start: "2025-04-01T00:00:00", end: "2025-04-01T00:00:00",
		},
		{
			name: "cai suncoast end date defaults to start",
			parse: func() (event.Timestamp, event.Timestamp, error) {
				return caiSuncoastParse("When From April 9, 2025, 5:30 pm to 7:30 pm Where")
			},
			start: "2025-04-09T17:30:00", end: "2025-04-09T19:30:00",
		},
		{
			name: "cai suncoast multi day",
			parse: func() (event.Timestamp, event.Timestamp, error) {
				return caiSuncoastParse("From April 9, 2025, 9:00 am to April 10, 2025, 5:00 pm")
			},
			start: "2025-04-09T09:00:00", end: "2025-04-10T17:00:00",
		},
		{
			name:  "date with clock range",
			parse: func() (event.Timestamp, event.Timestamp, error) { return dayRange("March 26, 2025 9:00 AM - 12:00 PM") },
			start: "2025-03-26T09:00:00", end: "2025-03-26T12:00:00",
		},
		{
			name:  "date without clocks",
			parse: func() (event.Timestamp, event.Timestamp, error) { return dayRange("March 26, 2025") },
			start: "2025-03-26T00:00:00", end: "2025-03-26T23:59:00",
		},
		{
			name:  "coaa stub without range",
			parse: func() (event.Timestamp, event.Timestamp, error) { return coaaParse("Starts April 9, 2025 at 9:30 AM", "") },
			start: "2025-04-09T09:30:00", end: "2025-04-09T09:30:00",
		},
		{
			name: "coaa stub with range",
			parse: func() (event.Timestamp, event.Timestamp, error) {
				return coaaParse("Starts April 9, 2025 at 9:30 AM", "9:30 AM - 11:00 AM")
			},
			start: "2025-04-09T09:30:00", end: "2025-04-09T11:00:00",
		},
		{
			name:  "sama from/to",
			parse: func() (event.Timestamp, event.Timestamp, error) { return samaParse("Apr 9, 2025 from 5:30 PM to 7:30 PM") },
			start: "2025-04-09T17:30:00", end: "2025-04-09T19:30:00",
		},
		{
			name:      "sama unmatched",
			parse:     func() (event.Timestamp, event.Timestamp, error) { return samaParse("Date to be announced") },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.parse()
			if (err != nil) != tt.wantError {
				t.Fatalf("error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if start.String() != tt.start || end.String() != tt.end {
				t.Errorf("got %s / %s, want %s / %s", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestCrewLink(t *testing.T) {
	cfg := &siteconfig.Config{BaseURL: "https://crew.example/", URL2: "https://crew.example/chapter"}
	tests := []struct {
		slug, registration, want string
	}{
		{"chapters/crew-sarasota/events/social", "", "https://crew.example/events/social"},
		{"", "https://reg.example/1", "https://reg.example/1"},
		{"chapters/crew-sarasota", "", "https://crew.example/chapter"},
	}
	for _, tt := range tests {
		if got := crewLink(cfg, tt.slug, tt.registration); got != tt.want {
			t.Errorf("crewLink(%q, %q) = %q, want %q", tt.slug, tt.registration, got, tt.want)
		}
	}
}

func TestNAIOPOrlUpcomingOnly(t *testing.T) {
	block := func(href, title, date, clock string) string {
		return `<div class="ev"><a class="t" href="` + href + `">` + title + `</a>
			<span class="date">` + date + `</span><span class="time">` + clock + `</span></div>`
	}
	server := serve(t, map[string]string{
		"/events": block("/e/1", "Spring Forum", "April 9, 2025", "7:30 AM - 9:30 AM") +
			block("/e/2", "Today Breakfast", "March 1, 2025", "8:00AM-10:00AM") +
			block("/e/3", "Winter Gala", "February 12, 2025", "6:00 PM - 9:00 PM") +
			block("/e/4", "Evening Social", "April 20, 2025", "Evening"),
	})

	result, err := runSite(t, "naiop_orl", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}",
		"event_list_selector": "div.ev", "event_link_selector": "a.t",
		"detail_selectors": {"DateTime": {"date_selector": "span.date", "time_selector": "span.time"}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Spring Forum", server.URL + "/e/1", "2025-04-09T07:30:00", "2025-04-09T09:30:00"},
		{"Today Breakfast", server.URL + "/e/2", "2025-03-01T08:00:00", "2025-03-01T10:00:00"},
	})
	if result.Filtered != 1 || result.Dropped != 1 {
		t.Errorf("expected the past event filtered and the rangeless one dropped, got %d/%d", result.Filtered, result.Dropped)
	}
}

func TestCoreNetCurrentYear(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<div>
			<div class="ev"><a class="title" href="/e/1" title="Capital Markets Update">Capital Mark...</a>
				<span class="when">Apr 9, 05:00 PM - 08:00 PM (ET)</span></div>
			<div class="ev"><a class="title" href="/e/2" title="Holiday Party">Holiday...</a>
				<span class="when">Date TBA</span></div>
			<div class="ev"><a class="title" href="/e/3" title="Leap Lunch">Leap...</a>
				<span class="when">Feb 30, 11:00 AM - 1:00 PM (ET)</span></div>
		</div>`,
	})

	result, err := runSite(t, "core_net", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "div.ev",
		"event_title_selector": "a.title", "event_time_selector": "span.when", "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Capital Markets Update", server.URL + "/e/1", "2025-04-09T17:00:00", "2025-04-09T20:00:00"},
	})
	if result.Dropped != 1 || result.Filtered != 0 {
		t.Errorf("expected only the impossible date dropped, got %d dropped, %d filtered", result.Dropped, result.Filtered)
	}
}

func TestAAGOFallbackSelectors(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<ul>
			<li><a href="/e/1">Leadership Retreat</a></li>
			<li><a href="/e/2">Spring Reception</a></li>
			<li><a href="/e/3">Open House</a></li>
			<li><a href="/e/4">Coming Soon</a></li>
		</ul>`,
		"/e/1": `<p class="start"><span>Starts</span> <span>Wednesday, April 9, 2025</span></p>
			<p class="end">to Thursday, April 10, 2025</p>
			<p class="time">9:00 AM - 5:00 PM (EDT)</p>`,
		"/e/2": `<div class="o-details-block__details-info"><strong>Friday, May 2, 2025</strong></div>
			<div class="o-details-block__details-copy">6:00 PM - 9:00 PM (EDT)</div>`,
		"/e/3": `<div class="o-details-block__details-info"><strong>Saturday, May 3, 2025</strong></div>`,
		"/e/4": `<p>Details to follow</p>`,
	})

	result, err := runSite(t, "aago_events", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "li",
		"event_link_selector": "a", "event_title_selector": "a",
		"detail_selectors": {"DateTime": {"start_date_selector": "p.start", "end_date_selector": "p.end", "time_selector": "p.time"}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Leadership Retreat", server.URL + "/e/1", "2025-04-09T09:00:00", "2025-04-10T17:00:00"},
		{"Spring Reception", server.URL + "/e/2", "2025-05-02T18:00:00", "2025-05-02T21:00:00"},
		{"Open House", server.URL + "/e/3", "2025-05-03T00:00:00", "2025-05-03T23:59:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected the dateless event dropped, got %d", result.Dropped)
	}
}

func TestCategoryFilters(t *testing.T) {
	script := `<script>const event = { start: '2025-04-09T21:30:00Z', end: '2025-04-09T23:30:00Z' };</script>`
	jsonLD := `<script type="application/ld+json">{"@type": "Event", "startDate": "2025-04-09T11:30:00-04:00", "endDate": "2025-04-09T13:00:00-04:00"}</script>`
	server := serve(t, map[string]string{
		"/events": `<div>
			<article><a class="l" href="/e/1"><h2>Networking Night</h2></a></article>
			<article><a class="l" href="/e/2"><h2>Lunch Webinar</h2></a></article>
		</div>`,
		"/e/1": `<a class="cat" href="/category/networking/">Networking</a>` + script + jsonLD,
		"/e/2": `<a class="cat" href="https://example.org/category/Webinar">Webinar</a>` + script + jsonLD,
	})
	list := `"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "article",
		"event_link_selector": "a.l", "event_title_selector": "h2", "scraper_interval": 0`
	filter := `"detail_selectors": {"Event Category": "a.cat", "Event Category Filter": ["webinar"]}`

	tests := []struct {
		name         string
		site         string
		config       string
		wants        []want
		wantFiltered int
	}{
		{
			name:   "sorep",
			site:   "sorep",
			config: `{` + list + `, ` + filter + `}`,
			wants: []want{
				{"Networking Night", server.URL + "/e/1", "2025-04-09T17:30:00-04:00", "2025-04-09T19:30:00-04:00"},
			},
			wantFiltered: 1,
		},
		{
			name:   "cai_cf",
			site:   "cai_cf",
			config: `{` + list + `, ` + filter + `}`,
			wants: []want{
				{"Networking Night", server.URL + "/e/1", "2025-04-09T11:30:00-04:00", "2025-04-09T13:00:00-04:00"},
			},
			wantFiltered: 1,
		},
		{
			name:   "cai_cf without filter",
			site:   "cai_cf",
			config: `{` + list + `}`,
			wants: []want{
				{"Networking Night", server.URL + "/e/1", "2025-04-09T11:30:00-04:00", "2025-04-09T13:00:00-04:00"},
				{"Lunch Webinar", server.URL + "/e/2", "2025-04-09T11:30:00-04:00", "2025-04-09T13:00:00-04:00"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runSite(t, tt.site, server.URL, tt.config, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkCandidates(t, result.Candidates, tt.wants)
			if result.Filtered != tt.wantFiltered || result.Dropped != 0 {
				t.Errorf("expected %d filtered and none dropped, got %d/%d", tt.wantFiltered, result.Filtered, result.Dropped)
			}
		})
	}
}

func TestABCCFLStartEndFallback(t *testing.T) {
	stamp := func(class, text string) string {
		return `<span class="` + class + `">` + text + `</span>`
	}
	server := serve(t, map[string]string{
		"/events": `<ul>
			<li><a href="/e/1">Safety Awards</a></li>
			<li><a href="/e/2">Breakfast Briefing</a></li>
			<li><a href="/e/3">Golf Outing</a></li>
			<li><a href="/e/4">Mystery Mixer</a></li>
		</ul>`,
		"/e/1": stamp("start", "04-09-2025 @ 5:30 PM") + stamp("end", "04-09-2025 @ 7:30 PM"),
		"/e/2": stamp("start", "05-02-2025 @ 8:00 AM"),
		"/e/3": stamp("end", "05-16-2025 @ 1:00 PM"),
		"/e/4": stamp("start", "TBD"),
	})

	result, err := runSite(t, "abc_cfl_business", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "li",
		"event_link_selector": "a", "event_title_selector": "a",
		"detail_selectors": {"DateTime": {"start_date_selector": "span.start", "end_date_selector": "span.end"}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Safety Awards", server.URL + "/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
		{"Breakfast Briefing", server.URL + "/e/2", "2025-05-02T08:00:00", "2025-05-02T08:00:00"},
		{"Golf Outing", server.URL + "/e/3", "2025-05-16T13:00:00", "2025-05-16T13:00:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected the unreadable event dropped, got %d", result.Dropped)
	}
}

func TestSWFAAEndFallbacks(t *testing.T) {
	block := func(href, title, inner string) string {
		return `<div class="ev"><a class="l" href="` + href + `">` + title + `</a>` + inner + `</div>`
	}
	start := func(label string) string {
		return `<time class="start" aria-label="` + label + `"></time>`
	}
	server := serve(t, map[string]string{
		"/events": block("/e/1", "Explicit End", start("Starts April 9, 2025 at 9:30 AM")+
			`<time class="end" aria-label="Ends April 9, 2025 at 11:00 AM"></time>`) +
			block("/e/2", "Stub Range", start("Starts April 10, 2025 at 6:00 PM")+
				`<span class="c-event-date-stub__time">6:00 PM - 8:00 PM</span>`) +
			block("/e/3", "Bad End", start("Starts April 11, 2025 at 7:00 AM")+
				`<time class="end" aria-label="Ends soon"></time>`) +
			block("/e/4", "Start Only", start("Starts April 12, 2025 at 10:00 AM")) +
			block("/e/5", "No Start", start("Starts TBA")),
	})

	result, err := runSite(t, "swfaa_affiliate_event", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}",
		"event_list_selector": "div.ev", "event_link_selector": "a.l",
		"detail_selectors": {"DateTime": {"start_selector": "time.start", "start_attribute": "aria-label",
			"end_selector": "time.end", "end_attribute": "aria-label"}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Explicit End", server.URL + "/e/1", "2025-04-09T09:30:00", "2025-04-09T11:00:00"},
		{"Stub Range", server.URL + "/e/2", "2025-04-10T18:00:00", "2025-04-10T20:00:00"},
		{"Bad End", server.URL + "/e/3", "2025-04-11T07:00:00", "2025-04-11T07:00:00"},
		{"Start Only", server.URL + "/e/4", "2025-04-12T10:00:00", "2025-04-12T10:00:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected the event without a start dropped, got %d", result.Dropped)
	}
}

func TestIFMAOrlSanitizedJSONLD(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<table>
			<tr class="ev"><td class="data_row"><div><b><a href="/e/1">Lunch Seminar</a></b></div></td></tr>
			<tr class="ev"><td class="data_row"><div><b><a href="/e/2">Plant Tour</a></b></div></td></tr>
			<tr class="ev"><td class="data_row">Header row</td></tr>
		</table>`,
		"/e/1": `<script type="application/ld+json">{"@context": "https://schema.org", "@type": "Event",
			"name": "Lunch &amp; Learn", "description": "Line one
Line two", "startDate": "2025-04-09T11:30:00", "endDate": "2025-04-09T13:00:00"}</script>`,
		"/e/2": `<p>No structured data</p>`,
	})

	result, err := runSite(t, "ifma_orl", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "tr.ev", "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Lunch Seminar", server.URL + "/e/1", "2025-04-09T11:30:00", "2025-04-09T13:00:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", result.Dropped)
	}
}

func TestIREMTBGluedYear(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<ul class="list">
			<li><a href="/e/1">Income Property Forum</a></li>
			<li><a href="/e/2">Board Meeting</a></li>
		</ul>`,
		"/e/1": `<div class="info"><p>Location: Tampa</p><p>April 16, 20259:00 AM - 12:00 PM Add to Calendar iCal Google</p></div>`,
		"/e/2": `<div class="info"><p>Location: Tampa</p></div>`,
	})

	result, err := runSite(t, "irem_tb", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "ul.list li",
		"event_link_selector": "a",
		"detail_selectors": {"DateTime": {"datetime_selector": {"selector": "div.info p", "position": 1}}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Income Property Forum", server.URL + "/e/1", "2025-04-16T09:00:00", "2025-04-16T12:00:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected the event without a datetime paragraph dropped, got %d", result.Dropped)
	}
}

func TestBOMATBPositional(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<div>
			<div class="ev"><a href="/e/1"><span class="t">Market Outlook</span></a></div>
			<div class="ev"><a href="/e/2"><span class="t">Charity Drive</span></a></div>
		</div>`,
		"/e/1": `<div class="when"><span>March 26, 20259:00 AM - 12:00 PM Add to Calendar</span></div>`,
		"/e/2": `<div class="when"><span>April 2, 2025</span></div>`,
	})

	result, err := runSite(t, "boma_tb", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "div.ev",
		"event_link_selector": "a", "event_title_selector": "span.t",
		"detail_selectors": {"DateTime": {"date_selector": {"selector": "div.when span", "position": 0}}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Market Outlook", server.URL + "/e/1", "2025-03-26T09:00:00", "2025-03-26T12:00:00"},
		{"Charity Drive", server.URL + "/e/2", "2025-04-02T00:00:00", "2025-04-02T23:59:00"},
	})
}

func TestNAIOPTBScriptMode(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<div><div class="ev"><a href="/e/1"><h3>Developer Showcase</h3></a></div></div>`,
		"/e/1":    `<script>const event = { start: '2025-04-09T21:30:00Z', end: '2025-04-09T23:30:00Z' };</script>`,
	})
	config := func(selector string) string {
		return `{
			"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "div.ev",
			"event_link_selector": "a", "event_title_selector": "h3",
			"detail_selectors": {"DateTime": {"start_dt_selector": "` + selector + `"}}, "scraper_interval": 0
		}`
	}

	result, err := runSite(t, "naiop_tb", server.URL, config("script:event.start"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkCandidates(t, result.Candidates, []want{
		{"Developer Showcase", server.URL + "/e/1", "2025-04-09T17:30:00-04:00", "2025-04-09T19:30:00-04:00"},
	})

	result, err = runSite(t, "naiop_tb", server.URL, config("div.start"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Candidates) != 0 || result.Dropped != 1 {
		t.Errorf("expected a markup selector to drop the event, got %d candidates, %d dropped", len(result.Candidates), result.Dropped)
	}
}

func TestGCBXEventScript(t *testing.T) {
	server := serve(t, map[string]string{
		"/calendar": `<section>
			<div class="card"><h3><a href="/event/summer-expo">Summer Expo</a></h3></div>
			<div class="card"><h3>Members Only</h3></div>
		</section>`,
		"/event/summer-expo": `<script>
			const event = {
				title: "Summer Expo",
				start: "2025-06-05T12:00:00Z",
				end: "2025-06-05T14:00:00Z"
			};
		</script>`,
	})

	result, err := runSite(t, "gcbx", server.URL, `{
		"url": "{{base}}/calendar", "base_url": "{{base}}",
		"event_list_selector": "div.card", "event_title_selector": "h3 a", "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Summer Expo", server.URL + "/event/summer-expo", "2025-06-05T08:00:00-04:00", "2025-06-05T10:00:00-04:00"},
	})
	if result.Dropped != 0 {
		t.Errorf("expected the linkless card skipped silently, got %d dropped", result.Dropped)
	}
}

func TestFGCARMeta(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<div>
			<div class="ev"><a class="title" href="/e/1">Realtor Rally</a>
				<meta itemprop="startDate" content="4/9/2025 5:30:00 PM">
				<meta itemprop="endDate" content="4/9/2025 7:30:00 PM"></div>
			<div class="ev"><a class="title" href="/e/2">Broken Meta</a>
				<meta itemprop="startDate" content="soon">
				<meta itemprop="endDate" content="later"></div>
			<div class="ev"><a class="title" href="/e/3">No Meta</a></div>
			<div class="ev"><a class="title" href="/e/4">Members Only Webinar</a>
				<meta itemprop="startDate" content="4/10/2025 9:00:00 AM">
				<meta itemprop="endDate" content="4/10/2025 10:00:00 AM"></div>
		</div>`,
	})

	result, err := runSite(t, "fgcar", server.URL, `{
		"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "div.ev",
		"event_title_selector": "a.title",
		"start_meta_selector": "meta[itemprop=startDate]", "end_meta_selector": "meta[itemprop=endDate]",
		"title_filter": ["webinar"], "scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Realtor Rally", server.URL + "/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
	})
	if result.Dropped != 1 || result.Filtered != 1 {
		t.Errorf("expected 1 dropped and 1 filtered, got %d/%d", result.Dropped, result.Filtered)
	}
}

func TestREISEventArray(t *testing.T) {
	server := serve(t, map[string]string{
		"/calendar": `<script type="application/ld+json">{"@type": "Organization", "name": "REIS"}</script>
			<script type="application/ld+json">[
				{"@type": "Event", "name": "Deal Makers", "url": "https://reis.example/e/1",
				 "startDate": "2025-04-09T17:30:00", "endDate": "2025-04-09T19:30:00"},
				{"@type": "Event", "name": "Bad Dates", "url": "https://reis.example/e/2",
				 "startDate": "soon", "endDate": "later"}
			]</script>`,
		"/empty": `<script type="application/ld+json">{"@type": "Organization", "name": "REIS"}</script>`,
	})
	config := func(path string) string {
		return `{"url": "{{base}}` + path + `", "event_data_selector": "script[type='application/ld+json']", "scraper_interval": 0}`
	}

	result, err := runSite(t, "reis", server.URL, config("/calendar"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkCandidates(t, result.Candidates, []want{
		{"Deal Makers", "https://reis.example/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
	})
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", result.Dropped)
	}

	if _, err := runSite(t, "reis", server.URL, config("/empty"), nil); err == nil {
		t.Error("expected a page without an event array to fail the site")
	}
}

func TestDetailDateTimeSites(t *testing.T) {
	server := serve(t, map[string]string{
		"/events": `<ul>
			<li><a href="/e/1">Evening Mixer</a></li>
			<li><a href="/e/2">Day of Service</a></li>
			<li><a href="/e/3">Missing Details</a></li>
		</ul>`,
		"/e/1": `<p class="date">April 9, 2025</p><p class="clock">5:30 PM - 7:30 PM</p>
			<p class="weekday">Wednesday, April 9, 2025</p><p class="zoned">5:30 PM - 7:30 PM (EDT)</p>`,
		"/e/2": `<p class="date">April 10, 2025</p><p class="clock">All day</p>
			<p class="weekday">Thursday, April 10, 2025</p><p class="zoned">All day</p>`,
		"/e/3": `<p>Check back soon</p>`,
	})
	config := func(dateSelector, timeSelector string) string {
		return `{
			"url": "{{base}}/events", "base_url": "{{base}}", "event_list_selector": "li",
			"event_link_selector": "a", "event_title_selector": "a",
			"detail_selectors": {"DateTime": {"date_selector": "` + dateSelector + `", "time_selector": "` + timeSelector + `"}},
			"scraper_interval": 0
		}`
	}
	wants := []want{
		{"Evening Mixer", server.URL + "/e/1", "2025-04-09T17:30:00", "2025-04-09T19:30:00"},
		{"Day of Service", server.URL + "/e/2", "2025-04-10T00:00:00", "2025-04-10T23:59:00"},
	}

	tests := []struct {
		site         string
		dateSelector string
		timeSelector string
	}{
		{"ccc_orl", "p.date", "p.clock"},
		{"boma_orl_events", "p.weekday", "p.zoned"},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			result, err := runSite(t, tt.site, server.URL, config(tt.dateSelector, tt.timeSelector), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkCandidates(t, result.Candidates, wants)
			if result.Dropped != 1 {
				t.Errorf("expected the event without details dropped, got %d", result.Dropped)
			}
		})
	}
}

func TestCAISWFLTooltipTitle(t *testing.T) {
	server := serve(t, map[string]string{
		"/calendar": `<div>
			<div class="jevent"><span title="<div class='jevtt_title'>Annual Meeting and Election</div>"><a class="l" href="/e/1">Annual Meet...</a></span></div>
			<div class="jevent"><a class="l" href="/e/2">Board Meeting</a></div>
		</div>`,
		"/e/1": `<div class="date">Wednesday, April 9, 2025</div><span class="start">10:00 AM EDT</span><span class="end">12:00 PM EDT</span>`,
		"/e/2": `<div class="date">Thursday, April 10, 2025</div>`,
	})

	result, err := runSite(t, "cai_swfl", server.URL, `{
		"url": "{{base}}/calendar", "base_url": "{{base}}", "event_list_selector": "div.jevent",
		"event_link_selector": "a.l",
		"detail_selectors": {"DateTime": {"date_selector": "div.date",
			"time_selector": [{"selector": "span.start"}, {"selector": "span.end"}]}},
		"scraper_interval": 0
	}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkCandidates(t, result.Candidates, []want{
		{"Annual Meeting and Election", server.URL + "/e/1", "2025-04-09T10:00:00", "2025-04-09T12:00:00"},
		{"Board Meeting", server.URL + "/e/2", "2025-04-10T00:00:00", "2025-04-10T23:59:00"},
	})
}
