// SPDX-License-Identifier: GPL-2.0-only

package main

// This project is GPL-2.0, but this file contains code from generic-device-plugin.
// Original license notice below.
//
// Copyright 2020 the generic-device-plugin authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MatthiasValvekens/vusbip/usbip"
)

// InterfaceSpec describes one interface of an exported device in the config
// file.
type InterfaceSpec struct {
	Class    uint8 `json:"class"`
	Subclass uint8 `json:"subclass"`
	Protocol uint8 `json:"protocol"`
}

// DeviceSpec describes one device exported by the demo server.
type DeviceSpec struct {
	Path               string          `json:"path"`
	BusID              string          `json:"bus_id"`
	BusNum             uint32          `json:"bus_num"`
	DevNum             uint32          `json:"dev_num"`
	Speed              uint32          `json:"speed"`
	Vendor             uint16          `json:"vendor"`
	Product            uint16          `json:"product"`
	BCDDevice          uint16          `json:"bcd_device"`
	DeviceClass        uint8           `json:"device_class"`
	DeviceSubclass     uint8           `json:"device_subclass"`
	DeviceProtocol     uint8           `json:"device_protocol"`
	ConfigurationValue uint8           `json:"configuration_value"`
	NumConfigurations  uint8           `json:"num_configurations"`
	Interfaces         []InterfaceSpec `json:"interfaces"`
}

// initConfig defines config flags, config file, and envs
func initConfig() error {
	cfgFile := flag.String("config", "", "Path to the config file.")
	flag.String("listen", ":3240", "The address at which to listen for USB/IP clients.")
	flag.String("metrics-listen", ":8080", "The address at which to listen for health and metrics.")
	flag.String("log-level", logLevelInfo, fmt.Sprintf("Log level to use. Possible values: %s", availableLogLevels))

	flag.Parse()
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	if *cfgFile != "" {
		viper.SetConfigFile(*cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/vusbip/")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
		} else {
			// Config file was found but another error was produced
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

func (spec *DeviceSpec) toDescriptor() usbip.DeviceDescriptor {
	dev := usbip.DeviceDescriptor{
		Path:               spec.Path,
		BusID:              spec.BusID,
		BusNum:             spec.BusNum,
		DevNum:             spec.DevNum,
		Speed:              spec.Speed,
		Vendor:             usbip.USBID(spec.Vendor),
		Product:            usbip.USBID(spec.Product),
		BCDDevice:          spec.BCDDevice,
		DeviceClass:        spec.DeviceClass,
		DeviceSubclass:     spec.DeviceSubclass,
		DeviceProtocol:     spec.DeviceProtocol,
		ConfigurationValue: spec.ConfigurationValue,
		NumConfigurations:  spec.NumConfigurations,
	}
	for _, itf := range spec.Interfaces {
		dev.Interfaces = append(dev.Interfaces, usbip.InterfaceDescriptor{
			Class:    itf.Class,
			Subclass: itf.Subclass,
			Protocol: itf.Protocol,
		})
	}
	return dev
}

// defaultDevices is served when the config file declares no devices: a
// single fake FTDI serial converter on bus ID 3-2.
func defaultDevices() []usbip.DeviceDescriptor {
	return []usbip.DeviceDescriptor{
		{
			Path:               "/foo/bar",
			BusID:              "3-2",
			BusNum:             3,
			DevNum:             2,
			Speed:              2,
			Vendor:             0x0403,
			Product:            0x6001,
			BCDDevice:          0x0110,
			DeviceClass:        255,
			ConfigurationValue: 1,
			NumConfigurations:  2,
			Interfaces: []usbip.InterfaceDescriptor{
				{Class: 255, Subclass: 26, Protocol: 29},
				{Class: 255, Subclass: 85, Protocol: 2},
			},
		},
	}
}

func getConfiguredDevices() ([]usbip.DeviceDescriptor, error) {
	raw, ok := viper.Get("devices").([]interface{})
	if !ok || len(raw) == 0 {
		return defaultDevices(), nil
	}

	devices := make([]usbip.DeviceDescriptor, 0, len(raw))
	for _, def := range raw {
		var spec DeviceSpec
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:  &spec,
			TagName: "json",
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(def); err != nil {
			return nil, fmt.Errorf("failed to decode device data %q: %w", def, err)
		}
		devices = append(devices, spec.toDescriptor())
	}
	return devices, nil
}
