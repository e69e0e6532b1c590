// Package enclosure models the meisseli battery enclosure: a battery
// compartment with a power switch, PCB and motor mount, its lid, a push
// button cap and two bit holders for the motor shaft.
package enclosure

import (
	"github.com/soypat/meisseli/param"
)

// Project is the project identifier used in exported file names.
const Project = "meisseli"

// Parameters declares the dimension table of the enclosure in mm. Only
// base parameters can be overridden.
func Parameters() *param.Set {
	s := param.NewSet().
		// Fasteners.
		Base("m2_hsi_hole_d", 2.9).
		Base("m1_6_hole", 1.8).
		Base("m1_6_cs_butt", 2.5).
		Base("lid_screw_d", 2.2).
		Base("lid_screw_cs_d", 4).
		Base("eps", 0.1).
		// Electronics.
		Base("pitch", 2.54).
		Base("pcb_thk", 1.7).
		Base("pcb_margin", 2).
		Base("button_thickness", 4.9).
		Base("button_gap", 0.3).
		Base("switch_knob", 1.2).
		Base("switch_height", 5.3).
		// Battery and motor.
		Base("batt_d", 18.5).
		Base("batt_len", 69).
		Base("spring_len", 6).
		Base("motor_len", 28).
		Base("motor_mount_screw_dist", 9).
		Base("motor_mount_bridging_extra", 0.3).
		// Shell.
		Base("wall", 1.5).
		Base("mount_len", 8).
		Base("end_wall_extra", 2).
		Base("sleeve_len", 55).
		// Bit holders.
		Base("shaft_d", 3).
		Base("slit", 0.6).
		Base("shaft_len", 7).
		Base("hd", 10)

	s.DeriveExpr("outer_d", "batt_d + 6").
		DeriveExpr("boxh", "batt_d + 2*wall").
		DeriveExpr("pcb_len", "11*pitch + pcb_margin").
		DeriveExpr("pcb_w", "5*pitch").
		DeriveExpr("pcb_mount_dy", "3*pitch").
		DeriveExpr("total_len", "mount_len + pcb_thk + batt_len + spring_len + wall + pcb_len + motor_len + end_wall_extra").
		Derive("inner_r", []string{"outer_d", "wall"}, func(in ...float64) float64 { return in[0]/2 - in[1] }).
		DeriveExpr("wall1_x", "mount_len + pcb_thk + batt_len + spring_len").
		DeriveExpr("wall2_x", "wall1_x + wall + pcb_len + motor_len - 9").
		DeriveExpr("pcb_mount_sc1_offx", "wall1_x + wall + 1.5*pitch + 1").
		DeriveExpr("pcb_mount_sc2_offx", "pcb_mount_sc1_offx + 8*pitch").
		DeriveExpr("button_xdim", "5*pitch").
		DeriveExpr("button_ydim", "3*pitch").
		DeriveExpr("button_x1", "pcb_mount_sc1_offx + 2*pitch").
		DeriveExpr("button_x2", "button_x1 + 6*pitch").
		DeriveExpr("inside_headroom", "boxh/2 - wall - pcb_thk - button_thickness - button_gap").
		DeriveExpr("power_pcb_size", "5*pitch + 1").
		DeriveExpr("pcb_surface_off", "switch_knob * switch_height").
		DeriveExpr("sleeve_x", "mount_len + pcb_thk + 5").
		DeriveExpr("lid_screw_x2", "total_len - (wall + 9)/2")

	return s.
		Constrain("positive wall", "wall > 0").
		Constrain("wall fits shell", "wall < outer_d/2").
		Constrain("positive battery", "batt_d > 0").
		Constrain("button headroom", "inside_headroom > 0").
		Constrain("battery fits", "inner_r > batt_d/2").
		Constrain("pcb mounts before motor wall", "pcb_mount_sc2_offx < wall2_x").
		Constrain("box inside shell", "boxh < outer_d").
		Constrain("pcb mount inside shell", "pcb_mount_dy + m2_hsi_hole_d/2 + 1 < inner_r")
}
