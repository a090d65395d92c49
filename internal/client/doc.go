// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client runs the interactive study client.
//
// It starts the sync services, hands the terminal to the UI and shuts the
// services down once the UI exits or the process is signalled.
package client
