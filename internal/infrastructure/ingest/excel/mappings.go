package excel

import "strings"

// Decoder maps for coded field values. The same code means different things
// in different fields, so the field name is always the routing key.

var yesNoMap = map[string]string{
	"001":   "Yes",
	"002":   "No",
	"1":     "Yes",
	"2":     "No",
	"true":  "Yes",
	"false": "No",
}

var premiseTypeMap = map[string]string{
	"001": "Office building",
	"002": "Shopping centre",
	"003": "Shop house",
	"004": "Others",
}

// Shared by roof, wall and floor material fields.
var materialMap = map[string]string{
	"001": "Concrete",
	"002": "Tiled",
	"003": "Metal",
	"004": "Wood",
}

var claimHistoryMap = map[string]string{
	"001": "No claim within 3 years",
	"002": "Claims within past 3 years",
}

var industryMap = map[string]string{
	"1":  "Jewellery & Gold",
	"2":  "Diamond & Precious Stones",
	"6":  "Money Services",
	"7":  "Luxury Watches",
	"13": "Pawnbrokers",
}

var recordsMaintainedMap = map[string]string{
	"001": "Online",
	"002": "Offline",
}

// decodeField converts a coded value into its human-readable label. Values
// without a map entry pass through unchanged.
func decodeField(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return v
	}

	f := strings.ToLower(field)
	switch {
	case f == "claim_history_label":
		if label, ok := claimHistoryMap[v]; ok {
			return label
		}
	case f == "premise_type_label":
		if label, ok := premiseTypeMap[v]; ok {
			return label
		}
	case strings.Contains(f, "_materials_"):
		if label, ok := materialMap[v]; ok {
			return label
		}
	case f == "industry_id_label":
		if label, ok := industryMap[v]; ok {
			return label
		}
	case f == "records_maintained_in_label":
		if label, ok := recordsMaintainedMap[v]; ok {
			return label
		}
	}

	if isYesNoField(f) {
		if label, ok := yesNoMap[strings.ToLower(v)]; ok {
			return label
		}
	}
	return v
}

// Yes/No fields follow recognizable naming: do_you_*, *_question, and a few
// fixed names carried over from the source schema.
func isYesNoField(field string) bool {
	if strings.HasPrefix(field, "do_you_") || strings.HasSuffix(field, "_question_label") {
		return true
	}
	switch field {
	case "recording_label", "cctv_maintenance_contract_label", "under_maintenance_contract_label",
		"central_monitoring_stations_label", "time_locking_label", "certified_label",
		"standard_operating_procedure_label", "shop_lifting_label",
		"installed_gps_tracker_in_transit_vehicles_label", "installed_gps_tracker_in_transit_bags_label",
		"usage_of_jaguar_transit_label", "background_checks_for_all_employees_label":
		return true
	}
	return false
}
