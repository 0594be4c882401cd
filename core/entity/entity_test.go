package entity

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) RawRecord {
	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(s), &rec))
	return rec
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		in        interface{}
		wantLabel string
		wantKnown bool
	}{
		{name: "true", in: true, wantLabel: StatusActive, wantKnown: true},
		{name: "false", in: false, wantLabel: StatusInactive, wantKnown: true},
		{name: `"true"`, in: "true", wantLabel: StatusActive, wantKnown: true},
		{name: `"TRUE"`, in: "TRUE", wantLabel: StatusActive, wantKnown: true},
		{name: `"t"`, in: "t", wantLabel: StatusActive, wantKnown: true},
		{name: `"T"`, in: "T", wantLabel: StatusActive, wantKnown: true},
		{name: `"1"`, in: "1", wantLabel: StatusActive, wantKnown: true},
		{name: `" true "`, in: " true ", wantLabel: StatusActive, wantKnown: true},
		{name: `"false"`, in: "false", wantLabel: StatusInactive, wantKnown: true},
		{name: `"0"`, in: "0", wantLabel: StatusInactive, wantKnown: true},
		{name: `"no"`, in: "no", wantLabel: StatusInactive, wantKnown: true},
		{name: "1", in: float64(1), wantLabel: StatusActive, wantKnown: true},
		{name: "0", in: float64(0), wantLabel: StatusInactive, wantKnown: true},
		{name: "2", in: 2, wantLabel: StatusActive, wantKnown: true},
		{name: "-1", in: -1, wantLabel: StatusInactive, wantKnown: true},
		{name: "json number", in: json.Number("3"), wantLabel: StatusActive, wantKnown: true},
		{name: "null", in: nil, wantLabel: StatusInactive, wantKnown: true},
		{name: "object", in: map[string]interface{}{}, wantLabel: StatusInactive},
		{name: "array", in: []interface{}{}, wantLabel: StatusInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, known := ClassifyStatus(tt.in)
			assert.Equal(t, tt.wantKnown, known)
			assert.Equal(t, tt.wantLabel, StatusLabel(tt.in))
		})
	}

	t.Run("missing key", func(t *testing.T) {
		row := MustLookup("sections").Normalize(RawRecord{"id": 9}, 0)
		assert.Equal(t, StatusInactive, row.Status)
	})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "integer", in: float64(450), want: "₹450"},
		{name: "fraction", in: 450.5, want: "₹450.50"},
		{name: "plain string", in: "450", want: "₹450"},
		{name: "already prefixed", in: "₹450", want: "₹450"},
		{name: "prefixed with space", in: "₹ 1200", want: "₹1200"},
		{name: "other glyph", in: "$75", want: "₹75"},
		{name: "glyph only", in: "₹", want: NotAvailable},
		{name: "nil", in: nil, want: NotAvailable},
		{name: "object", in: map[string]interface{}{"v": 1}, want: NotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.in, ""))
		})
	}
	assert.Equal(t, "$75", FormatMoney("$75", "$"))
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{in: "09:30", want: "9:30 AM"},
		{in: "00:05", want: "12:05 AM"},
		{in: "12:00", want: "12:00 PM"},
		{in: "13:45:10", want: "1:45 PM"},
		{in: "23:59", want: "11:59 PM"},
		{in: "9:30 am", want: "9:30 AM"},
		{in: "10:15PM", want: "10:15 PM"},
		{in: "25:00", want: "25:00"},
		{in: "noon", want: "noon"},
		{in: "", want: NotAvailable},
		{in: nil, want: NotAvailable},
	}
	for _, tt := range tests {
		name, _ := Stringify(tt.in)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.in))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05 Jan 2024", FormatDate("2024-01-05"))
	assert.Equal(t, "05 Jan 2024", FormatDate("2024-01-05T10:00:00Z"))
	assert.Equal(t, "05 Jan 2024", FormatDate("2024-01-05 10:00:00"))
	assert.Equal(t, "last monday", FormatDate("last monday"))
	assert.Equal(t, NotAvailable, FormatDate(nil))
}

func TestNormalize_HostelRoom(t *testing.T) {
	rec := decode(t, `{"id": 7, "monthly_fee": 450, "current_occupancy": 2}`)
	row := MustLookup("hostelrooms").Normalize(rec, 0)

	assert.Equal(t, "7", row.Key)
	assert.Equal(t, "HR7", row.ID)
	assert.Equal(t, "₹450", row.Fields["amount"])
	assert.Equal(t, "2", row.Fields["noofBed"])
	assert.Equal(t, NotAvailable, row.Fields["roomNo"])
	assert.Equal(t, NotAvailable, row.Fields["hostelName"])
	assert.Equal(t, "", row.Status)
	assert.Equal(t, rec, row.Original)
}

func TestNormalize_SectionStatus(t *testing.T) {
	sections := MustLookup("sections")
	assert.Equal(t, StatusActive, sections.Normalize(RawRecord{"id": 3, "is_active": "t"}, 0).Status)
	assert.Equal(t, StatusInactive, sections.Normalize(RawRecord{"id": 4, "is_active": 0}, 1).Status)
	assert.Equal(t, StatusActive, sections.Normalize(RawRecord{"id": 5, "active": true}, 2).Status)
}

func TestNormalize_AlternateKeys(t *testing.T) {
	hostels := MustLookup("hostels")

	row := hostels.Normalize(RawRecord{"id": 1, "hostel_name": "Phoenix", "name": "ignored"}, 0)
	assert.Equal(t, "Phoenix", row.Fields["hostelName"])

	row = hostels.Normalize(RawRecord{"id": 1, "hostel_name": "", "name": "Tiger"}, 0)
	assert.Equal(t, "Tiger", row.Fields["hostelName"])

	row = hostels.Normalize(RawRecord{"id": 1, "hostel_name": nil}, 0)
	assert.Equal(t, NotAvailable, row.Fields["hostelName"])

	rooms := MustLookup("hostelrooms")
	row = rooms.Normalize(decode(t, `{"id": 2, "monthly_fees": "₹300", "hostel": {"hostel_name": "Phoenix"}}`), 0)
	assert.Equal(t, "₹300", row.Fields["amount"])
	assert.Equal(t, "Phoenix", row.Fields["hostelName"])
}

func TestNormalize_DisplayID(t *testing.T) {
	hostels := MustLookup("hostels")
	assert.Equal(t, "HST-01", hostels.Normalize(RawRecord{"id": 1, "hostel_code": "HST-01"}, 0).ID)
	assert.Equal(t, "H12", hostels.Normalize(RawRecord{"id": 12}, 0).ID)

	row := hostels.Normalize(RawRecord{"hostel_name": "Nameless"}, 4)
	assert.Equal(t, "H005", row.ID)
	assert.Equal(t, "#5", row.Key)
}

func TestNormalize_JoinedAndTime(t *testing.T) {
	students := MustLookup("students")
	row := students.Normalize(RawRecord{"id": 1, "first_name": "Janet", "last_name": " Daniel "}, 0)
	assert.Equal(t, "Janet Daniel", row.Fields["name"])

	row = students.Normalize(RawRecord{"id": 2, "name": "Joann Michael"}, 0)
	assert.Equal(t, "Joann Michael", row.Fields["name"])

	routines := MustLookup("classroutines")
	row = routines.Normalize(RawRecord{"id": 1, "start_time": "09:00:00", "to_time": "10:30"}, 0)
	assert.Equal(t, "9:00 AM", row.Fields["startTime"])
	assert.Equal(t, "10:30 AM", row.Fields["endTime"])
}

func TestNormalize_TotalFallback(t *testing.T) {
	for _, name := range Names() {
		schema := MustLookup(name)
		t.Run(name, func(t *testing.T) {
			for _, rec := range []RawRecord{nil, {}, {"id": nil}} {
				row := schema.Normalize(rec, 0)
				assert.NotEmpty(t, row.Key)
				assert.NotEmpty(t, row.ID)
				for _, f := range schema.Fields {
					want := NotAvailable
					if f.Kind == Status {
						want = StatusInactive
					}
					assert.Equal(t, want, row.Fields[f.Name], f.Name)
				}
			}
		})
	}
}

func TestNormalize_PureAndIdempotent(t *testing.T) {
	raw := `{"id": 3, "section_name": "A", "is_active": "1", "class": {"name": "X"}}`
	rec := decode(t, raw)
	sections := MustLookup("sections")

	first := sections.Normalize(rec, 2)
	second := sections.Normalize(rec, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "X", first.Fields["class"])

	// input untouched
	assert.Equal(t, decode(t, raw), rec)
}

func TestNormalizeAll(t *testing.T) {
	recs := []RawRecord{{"id": 1, "is_active": []interface{}{}}, {"is_active": true}}
	n := NewNormalizer(MustLookup("sections"), nil, true)
	rows := NormalizeAll(n, recs)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, StatusInactive, rows[0].Status)
		assert.Equal(t, "#2", rows[1].Key)
		assert.Equal(t, StatusActive, rows[1].Status)
	}
	assert.Equal(t, []string{"status"}, n.Schema.Unclassified(recs[0]))
}

func TestNormalizeAll_UniqueKeys(t *testing.T) {
	tests := []struct {
		name     string
		recs     []RawRecord
		wantKeys []string
	}{
		{
			name:     "id and position",
			recs:     []RawRecord{{"id": 2, "section_name": "A"}, {"section_name": "B"}},
			wantKeys: []string{"2", "#2"},
		},
		{
			name:     "no ids",
			recs:     []RawRecord{{}, {}, {}},
			wantKeys: []string{"#1", "#2", "#3"},
		},
		{
			name:     "repeated id",
			recs:     []RawRecord{{"id": 4}, {"id": "4"}, {"id": 4}},
			wantKeys: []string{"4", "4#2", "4#3"},
		},
		{
			name:     "id shaped like a position",
			recs:     []RawRecord{{"id": "#2"}, {"name": "B"}},
			wantKeys: []string{"#2", "#2#2"},
		},
	}
	sections := MustLookup("sections")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := NormalizeAll(sections, tt.recs)
			keys := make([]string, len(rows))
			for i, row := range rows {
				keys[i] = row.Key
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestViewRowFields(t *testing.T) {
	row := MustLookup("roles").Normalize(RawRecord{"id": 1, "role_name": "Admin"}, 0)
	assert.Equal(t, []string{"key", "id", "createdOn", "roleName", "status"}, row.FieldNames())

	v, ok := row.Field("roleName")
	assert.True(t, ok)
	assert.Equal(t, "Admin", v)
	_, ok = row.Field("originalData")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	s, err := Lookup(" Hostels ")
	require.NoError(t, err)
	assert.Equal(t, "hostels", s.Name)

	_, err = Lookup("hostl")
	var unknown *ErrUnknownEntity
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"hostels", "hostelrooms"}, unknown.Suggestions)
	assert.Contains(t, err.Error(), `did you mean "hostels" or "hostelrooms"?`)

	assert.Equal(t, []string{"sections"}, Suggest("Section"))
	assert.Empty(t, Suggest("zzz"))
	assert.Empty(t, Suggest("  "))

	assert.Len(t, Names(), 13)
	assert.Equal(t, "$", MustLookup("hostelrooms").WithCurrency("$").Currency)
	assert.Equal(t, "", MustLookup("hostelrooms").Currency)
}
