package entity

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var statusField = FieldSpec{Name: "status", Title: "Status", Keys: []string{"is_active", "active", "isActive"}, Kind: Status}

// schemas holds one mapping table per entity, keyed by collection name.
var schemas = map[string]*Schema{
	"classrooms": {
		Name: "classrooms", Title: "Class Rooms", Prefix: "CR",
		CodeKeys: []string{"room_code"},
		Fields: []FieldSpec{
			{Name: "roomNo", Title: "Room No", Keys: []string{"room_no", "room_number", "name"}},
			{Name: "capacity", Title: "Capacity", Keys: []string{"capacity", "seating_capacity"}, Kind: Count},
			statusField,
		},
	},
	"classroutines": {
		Name: "classroutines", Title: "Class Routine", Prefix: "RT",
		Fields: []FieldSpec{
			{Name: "class", Title: "Class", Keys: []string{"class_name", "class", "class.name"}},
			{Name: "section", Title: "Section", Keys: []string{"section_name", "section", "section.name"}},
			{Name: "teacher", Title: "Teacher", Keys: []string{"teacher_name", "teacher", "teacher.name"}},
			{Name: "day", Title: "Day", Keys: []string{"day", "day_of_week", "weekday"}},
			{Name: "startTime", Title: "Start Time", Keys: []string{"start_time", "from_time", "starts_at"}, Kind: Time},
			{Name: "endTime", Title: "End Time", Keys: []string{"end_time", "to_time", "ends_at"}, Kind: Time},
			{Name: "classRoom", Title: "Class Room", Keys: []string{"class_room", "room_no", "classroom.room_no"}},
			statusField,
		},
	},
	"sections": {
		Name: "sections", Title: "Sections", Prefix: "SE",
		Fields: []FieldSpec{
			{Name: "class", Title: "Class", Keys: []string{"class_name", "class", "class.name"}},
			{Name: "section", Title: "Section", Keys: []string{"section_name", "name", "section"}},
			{Name: "noOfStudents", Title: "No of Students", Keys: []string{"no_of_students", "students_count", "student_count"}, Kind: Count},
			{Name: "noOfSubjects", Title: "No of Subjects", Keys: []string{"no_of_subjects", "subjects_count", "subject_count"}, Kind: Count},
			statusField,
		},
	},
	"subjects": {
		Name: "subjects", Title: "Subjects", Prefix: "SU",
		CodeKeys: []string{"subject_code"},
		Fields: []FieldSpec{
			{Name: "name", Title: "Name", Keys: []string{"subject_name", "name"}},
			{Name: "code", Title: "Code", Keys: []string{"code", "subject_code"}},
			{Name: "type", Title: "Type", Keys: []string{"subject_type", "type"}},
			statusField,
		},
	},
	"syllabus": {
		Name: "syllabus", Title: "Syllabus", Prefix: "SY",
		Fields: []FieldSpec{
			{Name: "class", Title: "Class", Keys: []string{"class_name", "class", "class.name"}},
			{Name: "section", Title: "Section", Keys: []string{"section_name", "section", "section.name"}},
			{Name: "subjectGroup", Title: "Subject Group", Keys: []string{"subject_group", "subject_name", "subject"}},
			{Name: "createdDate", Title: "Created Date", Keys: []string{"created_at", "created_date", "createdAt"}, Kind: Date},
			statusField,
		},
	},
	"hostels": {
		Name: "hostels", Title: "Hostels", Prefix: "H",
		CodeKeys: []string{"hostel_code"},
		Fields: []FieldSpec{
			{Name: "hostelName", Title: "Hostel Name", Keys: []string{"hostel_name", "name"}},
			{Name: "hostelType", Title: "Hostel Type", Keys: []string{"hostel_type", "type"}},
			{Name: "address", Title: "Address", Keys: []string{"address", "location"}},
			{Name: "inTake", Title: "Intake", Keys: []string{"intake", "in_take", "capacity"}, Kind: Count},
			{Name: "description", Title: "Description", Keys: []string{"description", "desc"}},
		},
	},
	"hostelrooms": {
		Name: "hostelrooms", Title: "Hostel Rooms", Prefix: "HR",
		CodeKeys: []string{"room_code"},
		Fields: []FieldSpec{
			{Name: "roomNo", Title: "Room No", Keys: []string{"room_no", "room_number", "name"}},
			{Name: "hostelName", Title: "Hostel", Keys: []string{"hostel_name", "hostel.hostel_name", "hostel.name", "hostel"}},
			{Name: "roomType", Title: "Room Type", Keys: []string{"room_type", "type"}},
			{Name: "noofBed", Title: "No of Bed", Keys: []string{"current_occupancy", "no_of_beds", "number_of_beds", "beds"}, Kind: Count},
			{Name: "amount", Title: "Cost per Bed", Keys: []string{"monthly_fee", "monthly_fees", "cost_per_bed", "amount"}, Kind: Money},
		},
	},
	"transportroutes": {
		Name: "transportroutes", Title: "Routes", Prefix: "TR",
		Fields: []FieldSpec{
			{Name: "routes", Title: "Routes", Keys: []string{"route_name", "name", "route"}},
			{Name: "addedOn", Title: "Added On", Keys: []string{"created_at", "added_on", "createdAt"}, Kind: Date},
			statusField,
		},
	},
	"drivers": {
		Name: "drivers", Title: "Drivers", Prefix: "D",
		Fields: []FieldSpec{
			{Name: "name", Title: "Name", Keys: []string{"driver_name", "name"}},
			{Name: "phone", Title: "Phone", Keys: []string{"phone", "phone_number", "mobile"}},
			{Name: "driverLicenseNo", Title: "Driving License No", Keys: []string{"license_number", "driving_license", "license_no"}},
			{Name: "address", Title: "Address", Keys: []string{"address", "permanent_address"}},
			statusField,
		},
	},
	"vehicles": {
		Name: "vehicles", Title: "Vehicles", Prefix: "V",
		Fields: []FieldSpec{
			{Name: "vehicleNo", Title: "Vehicle No", Keys: []string{"vehicle_no", "vehicle_number", "registration_number"}},
			{Name: "vehicleModel", Title: "Vehicle Model", Keys: []string{"vehicle_model", "model"}},
			{Name: "madeOfYear", Title: "Made of Year", Keys: []string{"made_of_year", "year"}, Kind: Count},
			{Name: "chassisNo", Title: "Chassis No", Keys: []string{"chassis_no", "chassis_number"}},
			{Name: "seatCapacity", Title: "Seat Capacity", Keys: []string{"seat_capacity", "seats", "capacity"}, Kind: Count},
			{Name: "driver", Title: "Driver", Keys: []string{"driver_name", "driver.driver_name", "driver.name", "driver"}},
			statusField,
		},
	},
	"students": {
		Name: "students", Title: "Students", Prefix: "ST",
		CodeKeys: []string{"admission_no", "admission_number"},
		Fields: []FieldSpec{
			{Name: "name", Title: "Name", Keys: []string{"first_name", "last_name"}, Kind: Joined, Alt: []string{"name", "full_name"}},
			{Name: "rollNo", Title: "Roll No", Keys: []string{"roll_no", "roll_number"}},
			{Name: "class", Title: "Class", Keys: []string{"class_name", "class", "class.name"}},
			{Name: "section", Title: "Section", Keys: []string{"section_name", "section", "section.name"}},
			{Name: "gender", Title: "Gender", Keys: []string{"gender", "sex"}},
			{Name: "dob", Title: "Date of Birth", Keys: []string{"date_of_birth", "dob"}, Kind: Date},
			statusField,
		},
	},
	"teachers": {
		Name: "teachers", Title: "Teachers", Prefix: "T",
		CodeKeys: []string{"teacher_id", "employee_code"},
		Fields: []FieldSpec{
			{Name: "name", Title: "Name", Keys: []string{"first_name", "last_name"}, Kind: Joined, Alt: []string{"name", "full_name"}},
			{Name: "class", Title: "Class", Keys: []string{"class_name", "class"}},
			{Name: "subject", Title: "Subject", Keys: []string{"subject_name", "subject"}},
			{Name: "email", Title: "Email", Keys: []string{"email", "email_address"}},
			{Name: "phone", Title: "Phone", Keys: []string{"phone", "phone_number", "mobile"}},
			{Name: "dateOfJoin", Title: "Date of Join", Keys: []string{"date_of_joining", "joining_date", "date_of_join"}, Kind: Date},
			statusField,
		},
	},
	"roles": {
		Name: "roles", Title: "Roles & Permissions", Prefix: "R",
		Fields: []FieldSpec{
			{Name: "roleName", Title: "Role Name", Keys: []string{"role_name", "name"}},
			{Name: "createdOn", Title: "Created On", Keys: []string{"created_at", "created_on"}, Kind: Date},
			statusField,
		},
	},
}

// ErrUnknownEntity is returned for names no schema is registered under.
type ErrUnknownEntity struct {
	Name        string
	Suggestions []string
}

func (err *ErrUnknownEntity) Error() string {
	msg := "unknown entity " + quote(err.Name)
	if len(err.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(quoteAll(err.Suggestions), " or ") + "?"
	}
	return msg
}

// Lookup returns the schema registered under name (case-insensitive).
func Lookup(name string) (*Schema, error) {
	if s, ok := schemas[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return nil, errors.WithStack(&ErrUnknownEntity{Name: name, Suggestions: Suggest(name)})
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) *Schema {
	s, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names lists the registered entity names, sorted.
func Names() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func quote(s string) string { return `"` + s + `"` }

func quoteAll(ss []string) []string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = quote(s)
	}
	return q
}
