package main

import "notifyd/internal/ctl"

func main() { ctl.Main() }
