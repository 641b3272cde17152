package plan

// ResolveBodyRegions returns the severity mapping for a classification. The
// activity and label are normalized first; an unrecognized activity resolves
// against the gait table, and an unrecognized label falls back to the
// activity's general entry. The result is a copy, so callers may merge into
// it freely.
func ResolveBodyRegions(activity, label string) BodyRegionMapping {
	act, _ := parseActivity(activity)
	table := regionTables[act]

	if mapping, ok := table[NormalizeLabel(label)]; ok {
		return mapping.clone()
	}
	return table[GeneralLabel].clone()
}
