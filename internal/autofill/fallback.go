package autofill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	"github.com/shopspring/decimal"
)

var (
	lenovoSerial     = regexp.MustCompile(`^[0-9]{2}[A-Z]{2}`)
	appleSerial      = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	lenovoLaptopType = regexp.MustCompile(`^8[0-9][A-Z][0-9]`)
)

const defaultDeviceType = "laptop"

var baseValues = map[string]int64{
	"laptop":  150,
	"desktop": 100,
	"monitor": 75,
	"tablet":  50,
	"phone":   30,
	"printer": 25,
}

var premiumBrands = map[string]bool{"Apple": true, "Lenovo": true, "Dell": true}

var co2Values = map[string]string{
	"laptop":  "2.5",
	"desktop": "4.0",
	"monitor": "3.0",
	"tablet":  "1.5",
	"phone":   "0.8",
	"printer": "2.0",
	"server":  "8.0",
}

var recyclingNotes = map[string]string{
	"laptop": "1. Remove the battery and dispose of it under local battery regulations. " +
		"2. Separate casing, motherboard, memory, storage and display. " +
		"3. Wipe or destroy every storage device. " +
		"4. Pack components so they cannot be crushed in transit. " +
		"5. Hand over to a certified e-waste recycler.",
	"desktop": "1. Disconnect all cables and open the case. " +
		"2. Remove drives and wipe or destroy them. " +
		"3. Separate the metal chassis, motherboard, memory and expansion cards. " +
		"4. Handle the power supply with care. " +
		"5. Recycle through a certified e-waste facility.",
	"monitor": "1. Handle the panel carefully to avoid breakage. " +
		"2. Remove the stand and cables. " +
		"3. Separate the plastic housing from the LCD or LED panel. " +
		"4. Dispose of backlight components as hazardous material. " +
		"5. Recycle through a certified electronics recycler.",
}

// detectManufacturer guesses the brand from well-known serial shapes.
// Returns "" when nothing matches.
func detectManufacturer(serial string) string {
	s := strings.ToUpper(strings.TrimSpace(serial))
	switch {
	case strings.Contains(s, "LENOVO") || lenovoSerial.MatchString(s):
		return "Lenovo"
	case strings.Contains(s, "DELL") || strings.HasPrefix(s, "DLL"):
		return "Dell"
	case strings.Contains(s, "HP"):
		return "HP"
	case strings.Contains(s, "ASUS"):
		return "ASUS"
	case strings.Contains(s, "ACER"):
		return "Acer"
	case strings.Contains(s, "MSI"):
		return "MSI"
	case strings.Contains(s, "APPLE") || appleSerial.MatchString(s):
		return "Apple"
	}
	return ""
}

func detectDeviceType(serial string) string {
	s := strings.ToUpper(strings.TrimSpace(serial))
	switch {
	case lenovoLaptopType.MatchString(s):
		return "laptop"
	case strings.Contains(s, "IDEAPAD") || strings.Contains(s, "THINKPAD"):
		return "laptop"
	case strings.Contains(s, "DESKTOP") || strings.Contains(s, "TOWER"):
		return "desktop"
	case strings.Contains(s, "MONITOR") || strings.Contains(s, "DISPLAY"):
		return "monitor"
	}
	return defaultDeviceType
}

// estimateValue prices a non-working device from its type, with a 1.5x
// premium for brands that hold resale value.
func estimateValue(deviceType, manufacturer string) decimal.Decimal {
	base, ok := baseValues[deviceType]
	if !ok {
		base = 50
	}
	value := decimal.NewFromInt(base)
	if premiumBrands[manufacturer] {
		value = value.Mul(decimal.NewFromFloat(1.5))
	}
	return value.Round(0)
}

func estimateCO2(deviceType string) decimal.Decimal {
	if v, ok := co2Values[deviceType]; ok {
		return decimal.RequireFromString(v)
	}
	return decimal.RequireFromString(co2Values[defaultDeviceType])
}

func defaultRecyclingNotes(deviceType string) string {
	if notes, ok := recyclingNotes[deviceType]; ok {
		return notes
	}
	return recyclingNotes[defaultDeviceType]
}

func defaultDescription(itemName string) string {
	if itemName == "" {
		itemName = "electronic device"
	}
	return fmt.Sprintf("Non-working %s collected for responsible recycling. "+
		"Processors, memory, storage and metals can be recovered through certified e-waste processing.", itemName)
}

func deviceName(itemName, manufacturer, deviceType string) string {
	if itemName != "" {
		return itemName
	}
	if manufacturer == "" {
		manufacturer = "Unknown"
	}
	return manufacturer + " " + deviceType
}

// fallbackSuggestion is computed from the serial number alone.
func fallbackSuggestion(itemName, serial string) Suggestion {
	manufacturer := detectManufacturer(serial)
	deviceType := detectDeviceType(serial)

	brand := manufacturer
	if brand == "" {
		brand = "Unknown"
	}

	return Suggestion{
		Name:           deviceName(itemName, manufacturer, deviceType),
		ModelNumber:    serial,
		Manufacturer:   brand,
		DeviceType:     deviceType,
		EstimatedValue: estimateValue(deviceType, manufacturer),
		CO2Estimate:    estimateCO2(deviceType),
		StockType:      catalog.StockTypeElectronic,
		Condition:      catalog.ConditionNonWorking,
		HazardLevel:    catalog.HazardLow,
		Priority:       catalog.PriorityMedium,
		RecyclingNotes: defaultRecyclingNotes(deviceType),
		Description:    defaultDescription(itemName),
	}
}
