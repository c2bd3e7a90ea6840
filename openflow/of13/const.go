/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package of13

const (
	/* Immutable messages. */
	OFPT_HELLO        uint8 = iota /* Symmetric message */
	OFPT_ERROR                     /* Symmetric message */
	OFPT_ECHO_REQUEST              /* Symmetric message */
	OFPT_ECHO_REPLY                /* Symmetric message */
	OFPT_EXPERIMENTER              /* Symmetric message */
	/* Switch configuration messages. */
	OFPT_FEATURES_REQUEST   /* Controller/switch message */
	OFPT_FEATURES_REPLY     /* Controller/switch message */
	OFPT_GET_CONFIG_REQUEST /* Controller/switch message */
	OFPT_GET_CONFIG_REPLY   /* Controller/switch message */
	OFPT_SET_CONFIG         /* Controller/switch message */
	/* Asynchronous messages. */
	OFPT_PACKET_IN    /* Async message */
	OFPT_FLOW_REMOVED /* Async message */
	OFPT_PORT_STATUS  /* Async message */
	/* Controller command messages. */
	OFPT_PACKET_OUT /* Controller/switch message */
	OFPT_FLOW_MOD   /* Controller/switch message */
	OFPT_GROUP_MOD  /* Controller/switch message */
	OFPT_PORT_MOD   /* Controller/switch message */
	OFPT_TABLE_MOD  /* Controller/switch message */
	/* Multipart messages. */
	OFPT_MULTIPART_REQUEST /* Controller/switch message */
	OFPT_MULTIPART_REPLY   /* Controller/switch message */
	/* Barrier messages. */
	OFPT_BARRIER_REQUEST /* Controller/switch message */
	OFPT_BARRIER_REPLY   /* Controller/switch message */
)

const (
	OFPP_MAX        = 0xffffff00
	OFPP_IN_PORT    = 0xfffffff8
	OFPP_TABLE      = 0xfffffff9
	OFPP_NORMAL     = 0xfffffffa
	OFPP_FLOOD      = 0xfffffffb
	OFPP_ALL        = 0xfffffffc
	OFPP_CONTROLLER = 0xfffffffd
	OFPP_LOCAL      = 0xfffffffe
	OFPP_ANY        = 0xffffffff
)

const (
	OFPG_ANY      = 0xffffffff
	OFP_NO_BUFFER = 0xffffffff
	// Do not buffer PACKET_IN frames; send the whole packet to the controller.
	OFPCML_NO_BUFFER = 0xffff
)

const (
	OFPFC_ADD           = 0 /* New flow. */
	OFPFC_MODIFY        = 1 /* Modify all matching flows. */
	OFPFC_MODIFY_STRICT = 2 /* Modify entry strictly matching wildcards and priority. */
	OFPFC_DELETE        = 3 /* Delete all matching flows. */
	OFPFC_DELETE_STRICT = 4 /* Delete entry strictly matching wildcards and priority. */
)

const (
	OFPFF_SEND_FLOW_REM = 1 << 0 /* Send flow removed message when flow expires or is deleted. */
	OFPFF_CHECK_OVERLAP = 1 << 1 /* Check for overlapping entries first. */
)

const (
	OFPMT_STANDARD = 0 /* Deprecated. */
	OFPMT_OXM      = 1 /* OpenFlow Extensible Match */
)

const (
	OFPXMC_OPENFLOW_BASIC = 0x8000
)

const (
	OFPXMT_OFB_IN_PORT  = 0 /* Switch input port. */
	OFPXMT_OFB_ETH_DST  = 3 /* Ethernet destination address. */
	OFPXMT_OFB_ETH_SRC  = 4 /* Ethernet source address. */
	OFPXMT_OFB_ETH_TYPE = 5 /* Ethernet frame type. */
)

const (
	OFPIT_GOTO_TABLE     = 1 /* Setup the next table in the lookup pipeline */
	OFPIT_WRITE_METADATA = 2 /* Setup the metadata field for use later in pipeline */
	OFPIT_WRITE_ACTIONS  = 3 /* Write the action(s) onto the datapath action set */
	OFPIT_APPLY_ACTIONS  = 4 /* Applies the action(s) immediately */
	OFPIT_CLEAR_ACTIONS  = 5 /* Clears all actions from the datapath action set */
)

const (
	OFPAT_OUTPUT = 0 /* Output to switch port. */
)

const (
	/* Port statistics.
	 * The request body is struct ofp_port_stats_request.
	 * The reply body is an array of struct ofp_port_stats. */
	OFPMP_PORT_STATS = 4
)

const (
	OFPMPF_REQ_MORE   = 1 << 0 /* More requests to follow. */
	OFPMPF_REPLY_MORE = 1 << 0 /* More replies to follow. */
)

const (
	OFPR_NO_MATCH    = 0 /* No matching flow (table-miss flow entry). */
	OFPR_ACTION      = 1 /* Action explicitly output to controller. */
	OFPR_INVALID_TTL = 2 /* Packet has invalid TTL */
)
