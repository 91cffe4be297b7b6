package forecast

import (
	"math"

	"app/models"
)

// SafetyStockMultiplier is the fixed buffer applied on top of raw projected
// demand to absorb forecast error.
const SafetyStockMultiplier = 1.20

// ProjectDemand sizes an extracted need over a procurement horizon.
// base demand is daily usage times the horizon, rounded up; forecasted units
// add the safety-stock multiplier, again rounded up, so forecasted units are
// never below base demand.
func ProjectDemand(item models.NeedItem, horizonDays int) models.ForecastedItem {
	baseDemand := int(math.Ceil(item.DailyUsage * float64(horizonDays)))
	forecastedUnits := int(math.Ceil(float64(baseDemand) * SafetyStockMultiplier))

	return models.ForecastedItem{
		NeedItem:        item,
		HorizonDays:     horizonDays,
		BaseDemand:      baseDemand,
		SafetyStock:     forecastedUnits - baseDemand,
		ForecastedUnits: forecastedUnits,
	}
}

// ProjectDemandAll sizes every item, preserving input order.
func ProjectDemandAll(items []models.NeedItem, horizonDays int) []models.ForecastedItem {
	sized := make([]models.ForecastedItem, 0, len(items))
	for _, item := range items {
		sized = append(sized, ProjectDemand(item, horizonDays))
	}
	return sized
}
