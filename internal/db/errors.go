package db

import (
	"errors"
	"fmt"
)

var (
	ErrMarshallingShipment    = errors.New("failed to marshal shipment record")
	ErrQueryingShipments      = errors.New("failed to query shipments")
	ErrScanningShipments      = errors.New("failed to scan shipments")
	ErrShipmentExists         = errors.New("shipment already exists")
	ErrShipmentNotWritten     = errors.New("failed to write shipment")
	ErrUnmarshallingShipments = errors.New("failed to unmarshal shipment records")
)

func ErrorMarshallingShipment(shipmentID string, cause error) error {
	return fmt.Errorf("%w: shipment=%s cause=%v", ErrMarshallingShipment, shipmentID, cause)
}

func ErrorQueryingShipments(tenantID string, cause error) error {
	return fmt.Errorf("%w: tenant=%s cause=%v", ErrQueryingShipments, tenantID, cause)
}

func ErrorScanningShipments(cause error) error {
	return fmt.Errorf("%w: cause=%v", ErrScanningShipments, cause)
}

func ErrorShipmentExists(shipmentID string) error {
	return fmt.Errorf("%w: shipment=%s", ErrShipmentExists, shipmentID)
}

func ErrorShipmentNotWritten(shipmentID string, cause error) error {
	return fmt.Errorf("%w: shipment=%s cause=%v", ErrShipmentNotWritten, shipmentID, cause)
}

func ErrorUnmarshallingShipments(cause error) error {
	return fmt.Errorf("%w: cause=%v", ErrUnmarshallingShipments, cause)
}
