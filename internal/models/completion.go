package models

import "math"

// MissionComplete reports the derived completion of a mission: all of its steps are complete,
// or it has no steps and its own completion record exists.
func MissionComplete(mission Mission, overlay ProgressOverlay) bool {
	if len(mission.Steps) == 0 {
		return overlay.HasMission(mission.ID)
	}
	for _, step := range mission.Steps {
		if !overlay.HasStep(step.ID) {
			return false
		}
	}
	return true
}

// ComputeCompletion counts completion units over a tree. A mission without steps is one unit;
// otherwise each of its steps is one unit and the mission itself is not counted.
func ComputeCompletion(tree []Level, overlay ProgressOverlay) Completion {
	result := Completion{CompletedMissions: []int64{}}

	for _, level := range tree {
		for _, mission := range level.Missions {
			if len(mission.Steps) == 0 {
				result.Total++
				if overlay.HasMission(mission.ID) {
					result.Completed++
				}
			} else {
				for _, step := range mission.Steps {
					result.Total++
					if overlay.HasStep(step.ID) {
						result.Completed++
					}
				}
			}

			if MissionComplete(mission, overlay) {
				result.CompletedMissions = append(result.CompletedMissions, mission.ID)
			}
		}
	}

	if result.Total > 0 {
		result.Percentage = int(math.Round(float64(result.Completed) / float64(result.Total) * 100))
	}
	return result
}
