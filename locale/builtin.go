package locale

// builtin holds the locales that are always available.
var builtin = map[Tag]*Locale{
	"de": {
		DecimalSeparator: ",",
		Strings: map[string]string{
			"app_title":              "Stromverbrauchsmonitor",
			"nav_live":               "Echtzeit",
			"nav_hour":               "Stunde",
			"nav_day":                "Tag",
			"nav_week":               "Woche",
			"nav_status":             "Status",
			"card_live_title":        "Live-Leistungsverlauf",
			"card_hour_title":        "Verlauf der letzten Stunde",
			"card_day_title":         "Verlauf der letzten 24 Stunden",
			"card_week_title":        "Verlauf der letzten Woche",
			"card_status_title":      "Aktuelle Messwerte & Status",
			"last_update":            "Letztes Update:",
			"section_current_values": "Momentanwerte",
			"stat_power":             "Aktuelle Leistung",
			"stat_meter":             "Zählerstand (Bezug)",
			"stat_direction":         "Netzrichtung",
			"unit_power":             "W",
			"unit_meter":             "kWh",
			"status_init":            "Initialisiere...",
			"footer_note":            "Die Grafiken werden alle 30 Sekunden aktualisiert.",
			"chart_label_power":      "Wirkleistung (W)",
			"chart_label_consump":    "Verbrauch/Intervall (Wh)",
			"chart_axis_time":        "Zeit",
			"chart_axis_power":       "Watt (W)",
			"chart_axis_consump":     "Verbrauch/Intervall (Wh)",
			"chart_title":            "Echtzeit-Leistungsverlauf",
			"status_feed_in":         "Einspeisung",
			"status_consumption":     "Bezug",
		},
	},
	"en": {
		DecimalSeparator: ".",
		Strings: map[string]string{
			"app_title":              "Power Consumption Monitor",
			"nav_live":               "Real-time",
			"nav_hour":               "Hour",
			"nav_day":                "Day",
			"nav_week":               "Week",
			"nav_status":             "Status",
			"card_live_title":        "Live Power History",
			"card_hour_title":        "Last Hour History",
			"card_day_title":         "Last 24 Hours History",
			"card_week_title":        "Last Week History",
			"card_status_title":      "Current Values & Status",
			"last_update":            "Last Update:",
			"section_current_values": "Current Values",
			"stat_power":             "Current Power",
			"stat_meter":             "Meter Reading (Grid)",
			"stat_direction":         "Grid Direction",
			"unit_power":             "W",
			"unit_meter":             "kWh",
			"status_init":            "Initializing...",
			"footer_note":            "Charts are updated every 30 seconds.",
			"chart_label_power":      "Active Power (W)",
			"chart_label_consump":    "Consump./Interval (Wh)",
			"chart_axis_time":        "Time",
			"chart_axis_power":       "Watt (W)",
			"chart_axis_consump":     "Consump./Interval (Wh)",
			"chart_title":            "Real-time Power History",
			"status_feed_in":         "Grid Feed-in",
			"status_consumption":     "Consumption",
		},
	},
}
