package analytics

const (
	eventCommandMonitor      = "hdas_command_monitor"
	eventCommandList         = "hdas_command_list"
	eventCommandOrphans      = "hdas_command_orphans"
	eventCommandStats        = "hdas_command_stats"
	eventCommandClean        = "hdas_command_clean"
	eventCommandCleanOrphans = "hdas_command_clean_orphans"
	eventCommandPrune        = "hdas_command_prune"
	eventCommandConfigEdit   = "hdas_command_config_edit"
)

func TrackCommandMonitor() {
	TrackEvent(eventCommandMonitor)
}

func TrackCommandList() {
	TrackEvent(eventCommandList)
}

func TrackCommandOrphans() {
	TrackEvent(eventCommandOrphans)
}

func TrackCommandStats() {
	TrackEvent(eventCommandStats)
}

func TrackCommandClean() {
	TrackEvent(eventCommandClean)
}

func TrackCommandCleanOrphans() {
	TrackEvent(eventCommandCleanOrphans)
}

func TrackCommandPrune() {
	TrackEvent(eventCommandPrune)
}

func TrackCommandConfigEdit() {
	TrackEvent(eventCommandConfigEdit)
}
