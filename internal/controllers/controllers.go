package controllers

import (
	"apartmentqueue/internal/services"

	apartmentController "apartmentqueue/internal/controllers/apartments"
	applicationController "apartmentqueue/internal/controllers/applications"
	lotteryController "apartmentqueue/internal/controllers/lottery"
	valuationController "apartmentqueue/internal/controllers/valuation"
)

type Controllers struct {
	Application applicationController.ApplicationControllerInterface
	Apartment   apartmentController.ApartmentControllerInterface
	Lottery     lotteryController.LotteryControllerInterface
	Valuation   valuationController.ValuationControllerInterface
}

func New(services services.Service) Controllers {
	return Controllers{
		Application: applicationController.New(services),
		Apartment:   apartmentController.New(services),
		Lottery:     lotteryController.New(services),
		Valuation:   valuationController.New(services),
	}
}
