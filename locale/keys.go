package locale

// Translation keys used by the live view itself. Other keys
// in the catalog are only used for static text.
const (
	KeyLastUpdate        = "last_update"
	KeyStatusInit        = "status_init"
	KeyStatusFeedIn      = "status_feed_in"
	KeyStatusConsumption = "status_consumption"
	KeyChartTitle        = "chart_title"
	KeyChartAxisTime     = "chart_axis_time"
	KeyChartAxisPower    = "chart_axis_power"
	KeyChartAxisConsump  = "chart_axis_consump"
	KeyChartLabelPower   = "chart_label_power"
	KeyChartLabelConsump = "chart_label_consump"
	KeyUnitPower         = "unit_power"
	KeyUnitMeter         = "unit_meter"
)
