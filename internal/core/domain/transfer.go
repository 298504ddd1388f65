package domain

// BranchLine describes one TRA branch line and the main-line hub where
// passengers transfer onto it. The table is versioned data injected at
// construction; DefaultBranchLines is the curated default.
type BranchLine struct {
	// Name is the branch line name, e.g. "平溪線".
	Name string

	// HubStationID is the main-line transfer station.
	HubStationID string

	// HubName is the hub's local name, for display.
	HubName string

	// StationIDs lists the stations on the branch, hub excluded.
	StationIDs []string
}

// TransferPlan is a two-leg journey through a branch-line hub.
type TransferPlan struct {
	// Hub is the transfer station.
	Hub StationCandidate

	// BranchLine is the branch line used for the second leg.
	BranchLine string

	// FirstLeg covers origin → hub, SecondLeg hub → destination.
	// Either may be the branch leg depending on travel direction.
	FirstLeg  []TrainSearchResult
	SecondLeg []TrainSearchResult
}

// DefaultBranchLines is the curated hub table for TRA branch lines.
var DefaultBranchLines = []BranchLine{
	{
		Name:         "平溪線",
		HubStationID: "7360", // 瑞芳
		HubName:      "瑞芳",
		StationIDs:   []string{"7331", "7332", "7333", "7334", "7335", "7336"},
	},
	{
		Name:         "深澳線",
		HubStationID: "7360", // 瑞芳
		HubName:      "瑞芳",
		StationIDs:   []string{"7361", "7362"},
	},
	{
		Name:         "集集線",
		HubStationID: "3430", // 二水
		HubName:      "二水",
		StationIDs:   []string{"3431", "3432", "3433", "3434", "3435", "3436"},
	},
	{
		Name:         "內灣線",
		HubStationID: "1210", // 新竹
		HubName:      "新竹",
		StationIDs:   []string{"1191", "1192", "1193", "1201", "1202", "1203", "1204", "1205", "1206", "1207", "1208"},
	},
	{
		Name:         "沙崙線",
		HubStationID: "4220", // 中洲
		HubName:      "中洲",
		StationIDs:   []string{"4271", "4272"},
	},
}
