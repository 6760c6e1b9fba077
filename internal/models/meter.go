package models

// Address is the postal address attached to a meter.
type Address struct {
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
}

// UserInfo describes one user with access to a meter.
type UserInfo struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	IsOwner     bool   `json:"is_owner"`
}

// UserLink ties a user to a meter with their role.
type UserLink struct {
	User    UserInfo `json:"user"`
	IsAdmin bool     `json:"is_admin"`
}

// Device holds the hardware details reported for a meter.
type Device struct {
	Firmware          string  `json:"fv"`
	Hardware          string  `json:"hv"`
	ID                string  `json:"id"`
	IP                string  `json:"ip"`
	Type              string  `json:"type"`
	Product           string  `json:"product"`
	APILevel          string  `json:"apiLevel"`
	Universe          *int64  `json:"universe"`
	Categories        []int64 `json:"categories"`
	DeviceName        string  `json:"deviceName"`
	AvailableFirmware string  `json:"availableFv"`
}

// Details wraps the device record.
type Details struct {
	Device Device `json:"device"`
}

// NotificationToggle is a push/email notification pair.
type NotificationToggle struct {
	PushEnabled  bool `json:"push_notification_enabled"`
	EmailEnabled bool `json:"email_notification_enabled"`
}

// UserSettings carries the per-meter notification preferences.
type UserSettings struct {
	Marketing           NotificationToggle `json:"marketing_communication"`
	NextDayPriceSummary NotificationToggle `json:"next_day_price_summary"`
}

// Meter is one metering point visible to the account. Records are re-decoded
// every refresh cycle and never mutated in place.
type Meter struct {
	ID                     int64        `json:"id"`
	MeterCode              string       `json:"meter_id"`
	Name                   string       `json:"name"`
	Status                 string       `json:"status"`
	ShippingOrder          *int64       `json:"shippingorder"`
	IsProsumer             bool         `json:"is_prosument"`
	PVInstallationPower    *float64     `json:"pv_installation_power"`
	HasAPIKey              bool         `json:"has_api_key"`
	WalletBillable         bool         `json:"wallet_billable"`
	HasBattery             bool         `json:"has_bess"`
	HasEV                  bool         `json:"has_ev"`
	HasHVAC                bool         `json:"has_hvac"`
	PropertyContractStatus string       `json:"property_contract_status"`
	Address                Address      `json:"address"`
	Users                  []UserLink   `json:"users"`
	Details                Details      `json:"details"`
	UserSettings           UserSettings `json:"user_settings"`
}

// DecodeMeter maps one raw meter payload. ok is false when the record lacks
// the integer identifier required to address per-meter endpoints.
func DecodeMeter(raw any) (Meter, bool) {
	m := asMap(raw)
	if m == nil {
		return Meter{}, false
	}
	id, ok := intField(m, "id")
	if !ok {
		return Meter{}, false
	}

	meter := Meter{
		ID:                     id,
		MeterCode:              stringField(m, "meter_id"),
		Name:                   stringField(m, "name"),
		Status:                 stringField(m, "status"),
		ShippingOrder:          intPtrField(m, "shippingorder"),
		IsProsumer:             boolField(m, "is_prosument"),
		PVInstallationPower:    floatPtrField(m, "pv_installation_power"),
		HasAPIKey:              boolField(m, "has_api_key"),
		WalletBillable:         boolField(m, "wallet_billable"),
		HasBattery:             boolField(m, "has_bess"),
		HasEV:                  boolField(m, "has_ev"),
		HasHVAC:                boolField(m, "has_hvac"),
		PropertyContractStatus: stringField(m, "property_contract_status"),
		Address:                decodeAddress(asMap(m["address"])),
		Details:                Details{Device: decodeDevice(asMap(asMap(m["details"])["device"]))},
		UserSettings:           decodeUserSettings(asMap(m["user_settings"])),
	}

	for _, item := range listField(m, "users") {
		link := asMap(item)
		if link == nil {
			continue
		}
		user := asMap(link["user"])
		uid, _ := intField(user, "id")
		meter.Users = append(meter.Users, UserLink{
			User: UserInfo{
				ID:          uid,
				Email:       stringField(user, "email"),
				FirstName:   stringField(user, "first_name"),
				LastName:    stringField(user, "last_name"),
				PhoneNumber: stringField(user, "phone_number"),
				IsOwner:     boolField(user, "is_owner"),
			},
			IsAdmin: boolField(link, "is_admin"),
		})
	}

	return meter, true
}

// DecodeMeters maps a raw meter list, silently dropping records without an
// identifier: a malformed single entry must not take down the whole list.
func DecodeMeters(raw any) []Meter {
	items, _ := raw.([]any)
	meters := make([]Meter, 0, len(items))
	for _, item := range items {
		if meter, ok := DecodeMeter(item); ok {
			meters = append(meters, meter)
		}
	}
	return meters
}

func decodeAddress(m map[string]any) Address {
	return Address{
		Street:       stringField(m, "street"),
		StreetNumber: stringField(m, "street_number"),
		PostalCode:   stringField(m, "postal_code"),
		City:         stringField(m, "city"),
	}
}

func decodeDevice(m map[string]any) Device {
	dev := Device{
		Firmware:          stringField(m, "fv"),
		Hardware:          stringField(m, "hv"),
		ID:                stringField(m, "id"),
		IP:                stringField(m, "ip"),
		Type:              stringField(m, "type"),
		Product:           stringField(m, "product"),
		APILevel:          stringField(m, "apiLevel"),
		Universe:          intPtrField(m, "universe"),
		DeviceName:        stringField(m, "deviceName"),
		AvailableFirmware: stringField(m, "availableFv"),
	}
	for _, c := range listField(m, "categories") {
		if n, ok := coerceFloat(c); ok {
			dev.Categories = append(dev.Categories, int64(n))
		}
	}
	return dev
}

func decodeUserSettings(m map[string]any) UserSettings {
	notifications := asMap(m["notifications_settings"])
	marketing := asMap(asMap(notifications["marketing"])["marketing_communication"])
	summary := asMap(asMap(notifications["price_alerts"])["next_day_price_summary"])
	return UserSettings{
		Marketing: NotificationToggle{
			PushEnabled:  boolField(marketing, "push_notification_enabled"),
			EmailEnabled: boolField(marketing, "email_notification_enabled"),
		},
		NextDayPriceSummary: NotificationToggle{
			PushEnabled:  boolField(summary, "push_notification_enabled"),
			EmailEnabled: boolField(summary, "email_notification_enabled"),
		},
	}
}
