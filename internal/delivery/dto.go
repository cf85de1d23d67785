package delivery

type BookRequest struct {
	PickupAddress   Address        `json:"pickup_address" binding:"required"`
	DeliveryAddress Address        `json:"delivery_address" binding:"required"`
	Package         PackageDetails `json:"package" binding:"required"`
}

type UpdateRequest struct {
	PickupAddress   *Address        `json:"pickup_address"`
	DeliveryAddress *Address        `json:"delivery_address"`
	Package         *PackageDetails `json:"package"`
}

type AdvanceRequest struct {
	Proof *Proof `json:"proof"`
}

type ForceStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type Response struct {
	Delivery *Delivery `json:"delivery"`
}
